package daystate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/config"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/database"
	redisclient "github.com/HarminderAI/Vedic-Market-Energy/pkg/redis"
)

// exerciseStore runs the StateStore contract against any backend
func exerciseStore(t *testing.T, store contracts.StateStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.AppendRow(ctx, "a", "1"))
	require.NoError(t, store.AppendRow(ctx, "a", "2"))
	require.NoError(t, store.AppendRow(ctx, "b", "x"))

	rows, err := store.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Less(t, rows[0].ID, rows[1].ID)
	assert.Equal(t, "a", rows[0].Key)

	require.NoError(t, store.UpdateRow(ctx, rows[0], "updated"))
	rows, err = store.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "updated", rows[0].Value)
	assert.False(t, rows[0].UpdatedAt.IsZero())

	c := NewCoordinator(store, time.UTC, nil)
	require.NoError(t, c.Set(ctx, "a", "final"))
	v, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "final", v)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	err := NewMemoryStore().UpdateRow(context.Background(), contracts.StateRow{ID: 42}, "v")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "run_state.db")
	store, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)

	err = store.UpdateRow(context.Background(), contracts.StateRow{ID: 999}, "v")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run_state.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.AppendRow(ctx, contracts.KeyLastMorningRun, "2024-05-02"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	state := NewCoordinator(reopened, time.UTC, nil).ReadAll(ctx)
	assert.Equal(t, "2024-05-02", state[contracts.KeyLastMorningRun])
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()

	db, err := database.New(ctx, config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `DROP TABLE IF EXISTS screener.run_state`)
	require.NoError(t, err)

	store, err := NewPostgresStore(ctx, db)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestRedisStore(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}
	ctx := context.Background()

	client, err := redisclient.New(ctx, config.RedisConfig{Enabled: true, Host: host, Port: "6379"})
	require.NoError(t, err)

	key := "screener_test:run_state"
	require.NoError(t, client.Redis().Del(ctx, key, key+":seq").Err())

	store, err := NewRedisStore(client, key)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestNewRedisStore_Disabled(t *testing.T) {
	client, err := redisclient.New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)

	_, err = NewRedisStore(client, "k")
	assert.Error(t, err)
}

func TestDialerFor(t *testing.T) {
	for _, backend := range []string{config.StateBackendSQLite, config.StateBackendPostgres, config.StateBackendRedis} {
		d, err := DialerFor(&config.Config{State: config.StateConfig{Backend: backend}})
		assert.NoError(t, err, backend)
		assert.NotNil(t, d, backend)
	}

	_, err := DialerFor(&config.Config{State: config.StateConfig{Backend: "sheets"}})
	assert.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), &config.Config{State: config.StateConfig{Backend: config.StateBackendMemory}}, nil)
	require.NoError(t, err)
	_, ok := store.(*MemoryStore)
	assert.True(t, ok)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{State: config.StateConfig{
		Backend:     config.StateBackendSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "s.db"),
		MaxAttempts: 2,
	}}
	store, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

var errFlaky = errors.New("connection reset")

func TestReconnectingStore_Redials(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryStore()
	dials := 0
	failing := true

	dial := func(context.Context) (contracts.StateStore, error) {
		dials++
		if failing {
			failing = false
			return nil, errFlaky
		}
		return backing, nil
	}

	store := NewReconnectingStore(dial, 3, time.Millisecond, nil)
	require.NoError(t, store.AppendRow(ctx, "k", "v"))
	assert.Equal(t, 2, dials)

	// a failed call drops the connection and dials again
	backing.Fail(errFlaky)
	go func() {
		time.Sleep(5 * time.Millisecond)
		backing.Fail(nil)
	}()
	rows, err := NewReconnectingStore(func(context.Context) (contracts.StateStore, error) {
		return backing, nil
	}, 10, 2*time.Millisecond, nil).Rows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// countingStore counts Close calls on the wrapped store
type countingStore struct {
	*MemoryStore
	closes int
}

func (c *countingStore) Close() error {
	c.closes++
	return nil
}

func TestReconnectingStore_KeepsConnectionOnPermanentErrors(t *testing.T) {
	backing := &countingStore{MemoryStore: NewMemoryStore()}
	dials := 0
	store := NewReconnectingStore(func(context.Context) (contracts.StateStore, error) {
		dials++
		return backing, nil
	}, 5, time.Hour, nil)

	ctx := context.Background()
	err := store.UpdateRow(ctx, contracts.StateRow{ID: 42}, "v")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
	assert.Equal(t, 1, dials)
	assert.Zero(t, backing.closes)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Rows(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, dials)
	assert.Zero(t, backing.closes)

	require.NoError(t, store.AppendRow(ctx, "k", "v"))
	assert.Equal(t, 1, dials, "connection reused")
}

func TestReconnectingStore_GivesUp(t *testing.T) {
	dials := 0
	store := NewReconnectingStore(func(context.Context) (contracts.StateStore, error) {
		dials++
		return nil, errFlaky
	}, 3, time.Millisecond, nil)

	_, err := store.Rows(context.Background())
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, dials)
}

func TestReconnectingStore_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewReconnectingStore(func(context.Context) (contracts.StateStore, error) {
		return nil, errFlaky
	}, 5, time.Hour, nil)

	err := store.AppendRow(ctx, "k", "v")
	assert.Error(t, err)
}
