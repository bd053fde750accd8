package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbra/pkg/config"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.Clear(ctx))

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.HasKey(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "b", []byte("two")))
	require.NoError(t, s.Set(ctx, "a", []byte("one")))
	require.NoError(t, s.Set(ctx, "a", []byte("uno")))

	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), v)

	ok, err = s.HasKey(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Remove(ctx, "b"))
	ok, err = s.HasKey(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Clear(ctx))
	keys, err = s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory("test"))
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory("test")
	in := []byte("value")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), out)
	out[0] = 'Y'

	again, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("value"), again)
}

func TestLevelDB(t *testing.T) {
	s, err := NewLevelDB(filepath.Join(t.TempDir(), "db"), "test", false)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestLevelDB_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "db")

	a, err := NewLevelDB(dir, "alpha", true)
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, "k", []byte("1")))
	require.NoError(t, a.Set(ctx, "j", []byte("2")))
	require.NoError(t, a.Close())

	b, err := NewLevelDB(dir, "alphabet", true)
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Set(ctx, "k", []byte("3")))

	keys, err := b.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
}

func TestEncrypted(t *testing.T) {
	inner := NewMemory("test")
	s, err := NewEncrypted(inner, testKey)
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestEncrypted_StoresCiphertext(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory("test")
	s, err := NewEncrypted(inner, testKey)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "secret", []byte("plaintext")))
	raw, err := inner.Get(ctx, "secret")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "plaintext")

	got, err := s.Get(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, []byte("plaintext"), got)
}

func TestEncrypted_RejectsMovedValue(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory("test")
	s, err := NewEncrypted(inner, testKey)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "a", []byte("value")))
	raw, _ := inner.Get(ctx, "a")
	require.NoError(t, inner.Set(ctx, "b", raw))

	_, err = s.Get(ctx, "b")
	assert.Equal(t, errors.CodeDecryptionFailed, errors.CodeOf(err))

	require.NoError(t, inner.Set(ctx, "c", []byte("x")))
	_, err = s.Get(ctx, "c")
	assert.Equal(t, errors.CodeDecryptionFailed, errors.CodeOf(err))
}

func TestNewEncrypted_BadKey(t *testing.T) {
	_, err := NewEncrypted(NewMemory("test"), "abcd")
	assert.Equal(t, errors.CodeStorageError, errors.CodeOf(err))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory("test")

	type settings struct {
		FeeLevel string `json:"feeLevel"`
		Count    int    `json:"count"`
	}
	require.NoError(t, SetJSON(ctx, s, "settings", settings{FeeLevel: "high", Count: 2}))

	var got settings
	require.NoError(t, GetJSON(ctx, s, "settings", &got))
	assert.Equal(t, settings{FeeLevel: "high", Count: 2}, got)

	require.NoError(t, s.Set(ctx, "broken", []byte("{")))
	err := GetJSON(ctx, s, "broken", &got)
	assert.Equal(t, errors.CodeStorageError, errors.CodeOf(err))

	err = GetJSON(ctx, s, "absent", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	t.Run("memory", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: "memory", Namespace: "n"}}
		s, err := New(ctx, cfg, log)
		require.NoError(t, err)
		assert.IsType(t, &Memory{}, s)
	})

	t.Run("leveldb encrypted", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{
			Backend:       "leveldb",
			Namespace:     "n",
			Path:          filepath.Join(t.TempDir(), "db"),
			EncryptionKey: testKey,
		}}
		s, err := New(ctx, cfg, log)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &Encrypted{}, s)
		exerciseStore(t, s)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: "etcd"}}
		_, err := New(ctx, cfg, log)
		assert.Equal(t, errors.CodeInvalidStorageType, errors.CodeOf(err))
	})
}

func TestRedis(t *testing.T) {
	url := os.Getenv("UMBRA_TEST_REDIS_URL")
	if url == "" {
		t.Skip("UMBRA_TEST_REDIS_URL not set")
	}
	s, err := NewRedis(url, "", 0, "umbra-test")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("UMBRA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("UMBRA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := OpenPostgres(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 2, MaxIdleConns: 2})
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv_store (
		namespace TEXT NOT NULL, key TEXT NOT NULL, value BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(), PRIMARY KEY (namespace, key))`)
	require.NoError(t, err)

	s := NewPostgres(db, "umbra-test")
	defer s.Close()
	exerciseStore(t, s)
}
