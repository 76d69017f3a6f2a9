package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"absensi/internal/attendance"
	"absensi/internal/metrics"
	"absensi/internal/queue"
)

// Dispatcher turns queued check-ins into notifications.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
}

func NewDispatcher(sender Sender, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{sender: sender, log: log}
}

// Run consumes q until ctx is cancelled or the queue closes.
func (d *Dispatcher) Run(ctx context.Context, q queue.Queue) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("queue consume init failed: %w", err)
	}
	d.log.Info("notification dispatcher started")
	for msg := range messages {
		d.Handle(ctx, msg)
	}
	d.log.Info("notification dispatcher stopped")
	return nil
}

// Handle processes one message. Delivery failures are logged and counted,
// never retried.
func (d *Dispatcher) Handle(ctx context.Context, msg queue.Message) {
	if msg.Type != queue.TypeCheckIn {
		return
	}
	var rec attendance.AttendanceRecord
	if err := json.Unmarshal(msg.Body, &rec); err != nil {
		metrics.Notifications.WithLabelValues("malformed").Inc()
		d.log.Warn("dropping malformed check-in message", zap.Error(err))
		return
	}

	n := FromRecord(rec)
	err := d.sender.Send(ctx, n)
	switch {
	case err == nil:
		metrics.Notifications.WithLabelValues("sent").Inc()
		d.log.Info("notification sent", zap.String("user_id", rec.UserID), zap.String("record_id", rec.ID))
	case errors.Is(err, ErrSkipped):
		metrics.Notifications.WithLabelValues("skipped").Inc()
		d.log.Debug("notification skipped", zap.String("user_id", rec.UserID), zap.String("message", n.Message))
	default:
		metrics.Notifications.WithLabelValues("failed").Inc()
		d.log.Warn("notification failed", zap.String("user_id", rec.UserID), zap.Error(err))
	}
}

// FromRecord builds the notification text for a check-in.
func FromRecord(rec attendance.AttendanceRecord) Notification {
	who := "Siswa"
	if rec.Role == attendance.RoleTeacher {
		who = "Guru"
	}
	msg := fmt.Sprintf("%s %s telah absen pada %s pukul %s", who, rec.UserName, rec.Date, rec.Time)
	if rec.Class != "" {
		msg += " (kelas " + rec.Class + ")"
	}
	return Notification{
		UserID:   rec.UserID,
		UserName: rec.UserName,
		Role:     string(rec.Role),
		Class:    rec.Class,
		Date:     rec.Date,
		Time:     rec.Time,
		Message:  msg,
	}
}

// Publish enqueues a check-in for the dispatcher.
func Publish(ctx context.Context, q queue.Queue, rec attendance.AttendanceRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return q.Publish(ctx, queue.Message{Type: queue.TypeCheckIn, Body: body})
}
