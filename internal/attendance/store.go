package attendance

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"absensi/internal/store"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	// DefaultOrg prefixes every qr code unless WithOrg overrides it.
	DefaultOrg = "MISBAHUL"
)

// Store is the shared application state: the session, the users, the
// attendance records and the teaching agendas. Every mutation re-reads the
// affected collection from the KV, then writes it back before the in-memory
// state changes, so several processes sharing a backend do not drop each
// other's appends.
type Store struct {
	kv     store.KV
	log    *zap.Logger
	org    string
	now    func() time.Time
	loc    *time.Location
	guard  bool
	maxGen int
	genID  func() string

	mu      sync.RWMutex
	current *User
	token   string // id of the access token bound to current
	users   []User
	records []AttendanceRecord
	agendas []TeachingAgenda
}

// Option configures a Store.
type Option func(*Store)

// WithOrg sets the organisation prefix used in qr codes.
func WithOrg(org string) Option {
	return func(s *Store) {
		if org != "" {
			s.org = org
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the timezone attendance dates and times are recorded in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithDailyGuard makes AddAttendance reject a second check-in by the same
// user on the same date.
func WithDailyGuard(on bool) Option {
	return func(s *Store) { s.guard = on }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore loads the four collections from kv and returns a ready Store.
func NewStore(ctx context.Context, kv store.KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:     kv,
		log:    zap.NewNop(),
		org:    DefaultOrg,
		now:    time.Now,
		loc:    time.Local,
		maxGen: 64,
		genID:  newID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Login makes the user with the given id the current session. An unknown id
// leaves the session untouched. Any token bound to the previous session
// stops being valid.
func (s *Store) Login(ctx context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sync(ctx, keyUsers); err != nil {
		return User{}, err
	}
	u, ok := s.findUser(id)
	if !ok {
		return User{}, ErrUserNotFound
	}
	if err := s.saveSession(ctx, &u); err != nil {
		return User{}, err
	}
	s.current = &u
	s.token = ""
	s.log.Info("session started", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Logout clears the session and removes it from the KV.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, keyCurrentUser); err != nil {
		return err
	}
	if s.current != nil {
		s.log.Info("session ended", zap.String("user_id", s.current.ID))
	}
	s.current = nil
	s.token = ""
	return nil
}

// BindToken ties the access token tokenID to the session of userID. It
// fails with ErrNoSession when userID is no longer logged in.
func (s *Store) BindToken(userID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != userID {
		return ErrNoSession
	}
	s.token = tokenID
	return nil
}

// Session returns the current user with the id of its bound token. The token
// id is empty until BindToken is called.
func (s *Store) Session() (User, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return User{}, "", false
	}
	return *s.current, s.token, true
}

// Refresh reloads every key, picking up writes made by other processes.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync(ctx, Keys()...)
}

// RegisterUser appends a new user and returns its id. Class is kept for
// students and subject for teachers; the other field is dropped. The store
// does not validate the name or look for duplicates.
func (s *Store) RegisterUser(ctx context.Context, in NewUser) (string, error) {
	if !in.Role.Valid() {
		return "", ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sync(ctx, keyUsers); err != nil {
		return "", err
	}
	id, err := s.uniqueUserID()
	if err != nil {
		return "", err
	}
	u := User{
		ID:     id,
		Name:   in.Name,
		Role:   in.Role,
		QRCode: QRCodeFor(s.org, in.Role, id),
	}
	if in.Role == RoleStudent {
		u.Class = in.Class
	} else {
		u.Subject = in.Subject
	}

	next := append(cloneSlice(s.users), u)
	if err := s.saveJSON(ctx, keyUsers, next); err != nil {
		return "", err
	}
	s.users = next
	s.log.Info("user registered", zap.String("user_id", id), zap.String("role", string(u.Role)))
	return id, nil
}

// AddAttendance records a check-in for userID at the current wall-clock
// time. With the daily guard off, repeated calls on the same day produce
// repeated records.
func (s *Store) AddAttendance(ctx context.Context, userID string) (AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sync(ctx, keyUsers, keyAttendanceRecords); err != nil {
		return AttendanceRecord{}, err
	}
	u, ok := s.findUser(userID)
	if !ok {
		return AttendanceRecord{}, ErrUserNotFound
	}

	now := s.now().In(s.loc)
	date := now.Format(DateLayout)
	if s.guard && s.hasRecord(userID, date) {
		return AttendanceRecord{}, ErrAlreadyCheckedIn
	}

	rec := AttendanceRecord{
		ID:       s.genID(),
		UserID:   u.ID,
		UserName: u.Name,
		Role:     u.Role,
		Date:     date,
		Time:     now.Format(TimeLayout),
		Class:    u.Class,
	}

	next := append(cloneSlice(s.records), rec)
	if err := s.saveJSON(ctx, keyAttendanceRecords, next); err != nil {
		return AttendanceRecord{}, err
	}
	s.records = next
	s.log.Info("attendance recorded",
		zap.String("user_id", rec.UserID),
		zap.String("date", rec.Date),
		zap.String("time", rec.Time))
	return rec, nil
}

// AddTeachingAgenda appends an agenda owned by the current session, which
// must belong to a teacher.
func (s *Store) AddTeachingAgenda(ctx context.Context, in NewAgenda) (TeachingAgenda, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sync(ctx, keyCurrentUser, keyTeachingAgendas); err != nil {
		return TeachingAgenda{}, err
	}
	switch {
	case s.current == nil:
		return TeachingAgenda{}, ErrNoSession
	case s.current.Role != RoleTeacher:
		return TeachingAgenda{}, ErrNotTeacher
	}

	a := TeachingAgenda{
		ID:          s.genID(),
		TeacherID:   s.current.ID,
		TeacherName: s.current.Name,
		Date:        in.Date,
		Class:       in.Class,
		Subject:     in.Subject,
		Material:    in.Material,
	}

	next := append(cloneSlice(s.agendas), a)
	if err := s.saveJSON(ctx, keyTeachingAgendas, next); err != nil {
		return TeachingAgenda{}, err
	}
	s.agendas = next
	s.log.Info("teaching agenda added", zap.String("teacher_id", a.TeacherID), zap.String("class", a.Class))
	return a, nil
}

// CurrentUser returns the session user, if any.
func (s *Store) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

// User looks a user up by id.
func (s *Store) User(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(id)
}

// Users returns the users in registration order.
func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.users)
}

func (s *Store) AttendanceRecords() []AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.records)
}

func (s *Store) TeachingAgendas() []TeachingAgenda {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.agendas)
}

// Today is the current date in the store's timezone.
func (s *Store) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// HasCheckedIn reports whether userID has a record dated date.
func (s *Store) HasCheckedIn(userID, date string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasRecord(userID, date)
}

// Org is the qr code prefix.
func (s *Store) Org() string { return s.org }

// Snapshot copies the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Users:             cloneSlice(s.users),
		AttendanceRecords: cloneSlice(s.records),
		TeachingAgendas:   cloneSlice(s.agendas),
	}
	if s.current != nil {
		u := *s.current
		st.CurrentUser = &u
	}
	return st
}

func (s *Store) findUser(id string) (User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func (s *Store) hasRecord(userID, date string) bool {
	for _, r := range s.records {
		if r.UserID == userID && r.Date == date {
			return true
		}
	}
	return false
}

func (s *Store) uniqueUserID() (string, error) {
	for i := 0; i < s.maxGen; i++ {
		id := s.genID()
		if _, taken := s.findUser(id); !taken {
			return id, nil
		}
	}
	return "", errIDSpaceExhausted
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in), len(in)+1)
	copy(out, in)
	return out
}
