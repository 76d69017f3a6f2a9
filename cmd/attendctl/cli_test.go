package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"absensi/internal/attendance"
	"absensi/internal/config"
	"absensi/internal/store"
)

type fixture struct {
	kv    *store.Memory
	clock time.Time
}

func newFixture() *fixture {
	return &fixture{kv: store.NewMemory(), clock: time.Date(2024, 3, 5, 7, 15, 0, 0, time.UTC)}
}

func (f *fixture) open(ctx context.Context, _ config.App, log *zap.Logger) (*attendance.Store, store.KV, error) {
	s, err := attendance.NewStore(ctx, f.kv,
		attendance.WithClock(func() time.Time { return f.clock }),
		attendance.WithLocation(time.UTC),
		attendance.WithLogger(log),
	)
	return s, f.kv, err
}

// state reopens the store the way the next invocation would see it.
func (f *fixture) state(t *testing.T) *attendance.Store {
	t.Helper()
	s, _, err := f.open(context.Background(), config.App{}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func (f *fixture) newCLI() *cli {
	return &cli{
		loadConfig: func() config.App { return config.App{Env: "prod", LogLevel: "error"} },
		open:       f.open,
	}
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return f.runCLI(t, f.newCLI(), args...)
}

func (f *fixture) runCLI(t *testing.T, c *cli, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := c.rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRegisterAndList(t *testing.T) {
	f := newFixture()

	out, err := f.run(t, "register", "--name", "Ahmad", "--role", "student", "--class", "7A", "--subject", "ignored")
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	assert.Equal(t, "MISBAHUL-STUDENT-"+fields[0], fields[1])

	_, err = f.run(t, "register", "--name", "Bu Siti", "--role", "teacher", "--subject", "Matematika")
	require.NoError(t, err)

	users := f.state(t).Users()
	require.Len(t, users, 2)
	assert.Equal(t, "7A", users[0].Class)
	assert.Empty(t, users[0].Subject)
	assert.Equal(t, "Matematika", users[1].Subject)

	out, err = f.run(t, "users", "--role", "teacher")
	require.NoError(t, err)
	assert.Contains(t, out, "Bu Siti")
	assert.NotContains(t, out, "Ahmad")
}

func TestRegister_Rejects(t *testing.T) {
	f := newFixture()

	_, err := f.run(t, "register", "--name", "X", "--role", "admin")
	assert.ErrorIs(t, err, attendance.ErrInvalidRole)

	_, err = f.run(t, "register", "--role", "student")
	assert.Error(t, err, "name is required")

	assert.Empty(t, f.state(t).Users())
}

func TestReport(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := f.state(t)
	budi, err := s.RegisterUser(ctx, attendance.NewUser{Name: "Budi", Role: attendance.RoleStudent, Class: "8B"})
	require.NoError(t, err)
	guru, err := s.RegisterUser(ctx, attendance.NewUser{Name: "Pak Ahmad", Role: attendance.RoleTeacher, Subject: "IPA"})
	require.NoError(t, err)
	_, err = s.AddAttendance(ctx, budi)
	require.NoError(t, err)
	_, err = s.AddAttendance(ctx, guru)
	require.NoError(t, err)

	out, err := f.run(t, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "NAMA SISWA")
	assert.Contains(t, out, "05/03/2024")
	assert.Contains(t, out, "Budi")
	assert.NotContains(t, out, "Pak Ahmad", "teachers are not in the public report")

	out, err = f.run(t, "report", "--format", "csv", "--class", "8B")
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Budi", "8B", "2024-03-05", "07:15:00", "Hadir"}, rows[1])

	out, err = f.run(t, "report", "--search", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "Tidak ada data absensi")

	_, err = f.run(t, "report", "--format", "xml")
	assert.Error(t, err)
}

func TestSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := f.state(t)
	id, err := s.RegisterUser(ctx, attendance.NewUser{Name: "Budi", Role: attendance.RoleStudent, Class: "8B"})
	require.NoError(t, err)

	out, err := f.run(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "no active session")

	_, err = s.Login(ctx, id)
	require.NoError(t, err)

	out, err = f.run(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	_, err = f.run(t, "session", "clear")
	require.NoError(t, err)
	_, ok := f.state(t).CurrentUser()
	assert.False(t, ok)
}

func TestQR(t *testing.T) {
	f := newFixture()
	id, err := f.state(t).RegisterUser(context.Background(), attendance.NewUser{Name: "Budi", Role: attendance.RoleStudent})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "budi.png")
	out, err := f.run(t, "qr", id, "--out", path)
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	png, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = f.run(t, "qr", "missing")
	assert.ErrorIs(t, err, attendance.ErrUserNotFound)
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "31/12/2023", displayDate("2023-12-31"))
	assert.Equal(t, "garbage", displayDate("garbage"))
}

func TestExport(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := f.state(t)
	id, err := s.RegisterUser(ctx, attendance.NewUser{Name: "Budi", Role: attendance.RoleStudent, Class: "8B"})
	require.NoError(t, err)
	_, err = s.AddAttendance(ctx, id)
	require.NoError(t, err)

	out, err := f.run(t, "export")
	require.NoError(t, err)

	var st attendance.State
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Nil(t, st.CurrentUser)
	require.Len(t, st.Users, 1)
	assert.Equal(t, id, st.Users[0].ID)
	require.Len(t, st.AttendanceRecords, 1)
	assert.Equal(t, "2024-03-05", st.AttendanceRecords[0].Date)
}

func TestLoggerFollowsConfig(t *testing.T) {
	f := newFixture()

	c := f.newCLI()
	_, err := f.runCLI(t, c, "users")
	require.NoError(t, err)
	assert.True(t, c.logger.Core().Enabled(zapcore.ErrorLevel))
	assert.False(t, c.logger.Core().Enabled(zapcore.WarnLevel), "LOG_LEVEL=error is honoured")

	c = f.newCLI()
	_, err = f.runCLI(t, c, "users", "--verbose")
	require.NoError(t, err)
	assert.True(t, c.logger.Core().Enabled(zapcore.DebugLevel), "--verbose overrides the level")
}
