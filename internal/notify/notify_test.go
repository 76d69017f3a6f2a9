package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absensi/internal/attendance"
	"absensi/internal/queue"
)

var rec = attendance.AttendanceRecord{
	ID: "r1", UserID: "abc1234", UserName: "Ani", Role: attendance.RoleStudent,
	Date: "2024-03-05", Time: "07:01:02", Class: "X-A",
}

func TestFromRecord(t *testing.T) {
	n := FromRecord(rec)
	assert.Equal(t, "Siswa Ani telah absen pada 2024-03-05 pukul 07:01:02 (kelas X-A)", n.Message)

	teacher := rec
	teacher.Role, teacher.UserName, teacher.Class = attendance.RoleTeacher, "Budi", ""
	assert.Equal(t, "Guru Budi telah absen pada 2024-03-05 pukul 07:01:02", FromRecord(teacher).Message)
}

func TestClient_Send(t *testing.T) {
	var got Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL, false).Send(context.Background(), FromRecord(rec)))
	assert.Equal(t, "abc1234", got.UserID)
	assert.Equal(t, "X-A", got.Class)
}

func TestClient_SendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, false).Send(context.Background(), FromRecord(rec))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway down")

	assert.ErrorIs(t, New(srv.URL, true).Send(context.Background(), Notification{}), ErrSkipped)
	assert.ErrorIs(t, New("", false).Send(context.Background(), Notification{}), ErrSkipped)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *recordingSender) Send(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestDispatcher_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemory(8)
	require.NoError(t, Publish(ctx, q, rec))
	require.NoError(t, q.Publish(ctx, queue.Message{Type: "other", Body: []byte("x")}))
	require.NoError(t, q.Publish(ctx, queue.Message{Type: queue.TypeCheckIn, Body: []byte("{broken")}))

	sender := &recordingSender{}
	done := make(chan error, 1)
	go func() { done <- NewDispatcher(sender, nil).Run(ctx, q) }()

	assert.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
	assert.Equal(t, "Ani", sender.sent[0].UserName)
}
