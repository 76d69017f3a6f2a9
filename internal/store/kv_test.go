package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the contract every backend must satisfy.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, found, err := kv.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "users", []byte(`[{"id":"a"}]`)))
	v, found, err := kv.Get(ctx, "users")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"a"}]`, string(v))

	require.NoError(t, kv.Set(ctx, "users", []byte(`[]`)))
	v, _, err = kv.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v), "set overwrites the whole value")

	require.NoError(t, kv.Delete(ctx, "users"))
	_, found, err = kv.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Delete(ctx, "never-set"))
	assert.True(t, kv.Healthy(ctx))
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'z'
	v, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
}

func TestSQLite(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)
	kv, err := NewSQLKV(context.Background(), db.Client, DialectSQLite)
	require.NoError(t, err)
	defer kv.Close()

	exerciseKV(t, kv)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	kv, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	kv, err = Open(ctx, Options{Backend: BackendSQLite, SQLitePath: t.TempDir() + "/nested/absensi.db"})
	require.NoError(t, err)
	assert.IsType(t, &SQLKV{}, kv)
	require.NoError(t, kv.Close())

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.Error(t, err)
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	kv, err := Open(context.Background(), Options{Backend: BackendPostgres, DatabaseURL: dsn})
	require.NoError(t, err)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	kv, err := Open(context.Background(), Options{Backend: BackendRedis, RedisAddr: addr, RedisPrefix: "absensi-test:"})
	require.NoError(t, err)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestOpenSQLKV_ClosesDBWhenSchemaFails(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = openSQLKV(ctx, db, DialectSQLite)
	require.Error(t, err)

	assert.ErrorContains(t, db.Client.Ping(), "database is closed")
}
