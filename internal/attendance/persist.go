package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Keys the state is mirrored under.
const (
	keyCurrentUser       = "currentUser"
	keyUsers             = "users"
	keyAttendanceRecords = "attendanceRecords"
	keyTeachingAgendas   = "teachingAgendas"
)

// Keys lists every KV key the store owns.
func Keys() []string {
	return []string{keyCurrentUser, keyUsers, keyAttendanceRecords, keyTeachingAgendas}
}

func (s *Store) load(ctx context.Context) error {
	if err := s.sync(ctx, Keys()...); err != nil {
		return err
	}
	s.log.Debug("state loaded",
		zap.Int("users", len(s.users)),
		zap.Int("attendance_records", len(s.records)),
		zap.Int("teaching_agendas", len(s.agendas)),
		zap.Bool("session", s.current != nil))
	return nil
}

// sync replaces the in-memory copy of each key with what the KV holds. A
// missing key empties it; a malformed value leaves it as it was. Callers
// hold the write lock.
func (s *Store) sync(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		var err error
		switch key {
		case keyCurrentUser:
			err = s.syncSession(ctx)
		case keyUsers:
			err = syncInto(ctx, s, key, &s.users)
		case keyAttendanceRecords:
			err = syncInto(ctx, s, key, &s.records)
		case keyTeachingAgendas:
			err = syncInto(ctx, s, key, &s.agendas)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func syncInto[T any](ctx context.Context, s *Store, key string, dst *T) error {
	v, _, err := loadJSON[T](ctx, s, key)
	switch {
	case errors.Is(err, errMalformed):
		return nil
	case err != nil:
		return err
	}
	*dst = v
	return nil
}

// syncSession drops the bound token when the stored session no longer
// belongs to the same user.
func (s *Store) syncSession(ctx context.Context) error {
	u, found, err := loadJSON[User](ctx, s, keyCurrentUser)
	switch {
	case errors.Is(err, errMalformed):
		return nil
	case err != nil:
		return err
	}
	if !found {
		s.current, s.token = nil, ""
		return nil
	}
	if s.current == nil || s.current.ID != u.ID {
		s.token = ""
	}
	s.current = &u
	return nil
}

// loadJSON decodes the value stored under key. A missing key yields the
// zero value and false. A value that does not decode is logged and reported
// as errMalformed.
func loadJSON[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var zero T
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return zero, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !found || len(raw) == 0 || string(raw) == "null" {
		return zero, false, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.Warn("ignoring malformed stored value", zap.String("key", key), zap.Error(err))
		return zero, false, errMalformed
	}
	return v, true, nil
}

func (s *Store) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *Store) saveSession(ctx context.Context, u *User) error {
	return s.saveJSON(ctx, keyCurrentUser, u)
}
