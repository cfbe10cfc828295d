package daystate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

func newTestCoordinator(t *testing.T, at time.Time) (*Coordinator, *MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: at}
	store := NewMemoryStore().WithClock(clock.Now)
	return NewCoordinator(store, ist, nil, WithClock(clock.Now)), store, clock
}

func TestToday_UsesConfiguredZone(t *testing.T) {
	// 20:00 UTC is already the next day in IST
	c, _, _ := newTestCoordinator(t, time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-05-02", c.Today())
}

func TestAlreadyHappenedToday(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(t, time.Date(2024, 5, 2, 9, 15, 0, 0, ist))

	assert.False(t, c.AlreadyHappenedToday(ctx, contracts.KeyLastMorningRun))
	require.NoError(t, c.MarkDoneToday(ctx, contracts.KeyLastMorningRun))
	assert.True(t, c.AlreadyHappenedToday(ctx, contracts.KeyLastMorningRun))
	assert.True(t, c.AlreadyHappenedToday(ctx, contracts.KeyLastMorningRun))
	assert.False(t, c.AlreadyHappenedToday(ctx, contracts.KeyLastEODRun))
}

func TestAlreadyHappenedToday_DayRollover(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCoordinator(t, time.Date(2024, 5, 2, 23, 59, 0, 0, ist))

	require.NoError(t, c.MarkDoneToday(ctx, contracts.KeyLastMorningRun))
	assert.True(t, c.AlreadyHappenedToday(ctx, contracts.KeyLastMorningRun))

	clock.Set(time.Date(2024, 5, 3, 0, 1, 0, 0, ist))
	assert.False(t, c.AlreadyHappenedToday(ctx, contracts.KeyLastMorningRun))
}

func TestDedupe(t *testing.T) {
	t0 := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	rows := []contracts.StateRow{
		{ID: 1, Key: "a", Value: "old", UpdatedAt: t0},
		{ID: 2, Key: "a", Value: "new", UpdatedAt: t0.Add(time.Minute)},
		{ID: 3, Key: "a", Value: "stale", UpdatedAt: t0},
		{ID: 4, Key: "b", Value: "first", UpdatedAt: t0},
		{ID: 5, Key: "b", Value: "tie-higher-id", UpdatedAt: t0},
	}

	got := Dedupe(rows)
	assert.Equal(t, contracts.RunState{"a": "new", "b": "tie-higher-id"}, got)
}

func TestSet_UpdatesEveryDuplicate(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCoordinator(t, time.Date(2024, 5, 2, 9, 0, 0, 0, ist))

	old := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	store.Inject("k", "x", old)
	store.Inject("k", "y", old)
	store.Inject("other", "z", old)

	require.NoError(t, c.Set(ctx, "k", "v"))

	rows, err := store.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		if r.Key == "k" {
			assert.Equal(t, "v", r.Value)
		}
	}
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestSet_AppendsWhenMissing(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCoordinator(t, time.Date(2024, 5, 2, 9, 0, 0, 0, ist))

	require.NoError(t, c.Set(ctx, "k", "1"))
	require.NoError(t, c.Set(ctx, "k", "2"))

	rows, _ := store.Rows(ctx)
	assert.Len(t, rows, 1)
	assert.Equal(t, 2, store.Writes())
}

func TestReadFailureDegrades(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCoordinator(t, time.Date(2024, 5, 2, 9, 0, 0, 0, ist))
	require.NoError(t, c.MarkDoneToday(ctx, contracts.KeyLastMorningRun))

	store.Fail(errors.New("quota exceeded"))

	assert.Empty(t, c.ReadAll(ctx))
	assert.False(t, c.AlreadyHappenedToday(ctx, contracts.KeyLastMorningRun))

	err := c.Set(ctx, "k", "v")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrStateUnavailable)
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCoordinator(t, time.Date(2024, 5, 2, 9, 15, 0, 0, ist))

	calls := 0
	work := func(context.Context) error { calls++; return nil }

	ran, err := c.RunOnce(ctx, contracts.KeyLastMorningRun, work)
	require.NoError(t, err)
	assert.True(t, ran)

	ran, err = c.RunOnce(ctx, contracts.KeyLastMorningRun, work)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, 1, calls)

	clock.Set(time.Date(2024, 5, 3, 9, 15, 0, 0, ist))
	ran, err = c.RunOnce(ctx, contracts.KeyLastMorningRun, work)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, calls)
}

func TestRunOnce_FailureLeavesUnmarked(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(t, time.Date(2024, 5, 2, 9, 15, 0, 0, ist))

	boom := errors.New("boom")
	ran, err := c.RunOnce(ctx, "job", func(context.Context) error { return boom })
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.AlreadyHappenedToday(ctx, "job"))
}

func TestRunOnce_Concurrent(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(t, time.Date(2024, 5, 2, 9, 15, 0, 0, ist))

	var calls int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.RunOnce(ctx, "job", func(context.Context) error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRunOnce_StoreDownRunsAnyway(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCoordinator(t, time.Date(2024, 5, 2, 9, 15, 0, 0, ist))
	store.Fail(errors.New("unreachable"))

	calls := 0
	ran, err := c.RunOnce(ctx, "job", func(context.Context) error { calls++; return nil })
	assert.True(t, ran)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, contracts.ErrStateUnavailable)
}

func TestHealthMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCoordinator(t, time.Date(2024, 5, 2, 9, 15, 0, 0, ist))

	assert.Empty(t, c.LoadHealthMemory(ctx))

	mem := contracts.SymbolHealthMemory{"TCS.NS": contracts.HealthOverstretched}
	require.NoError(t, c.SaveHealthMemory(ctx, mem))
	assert.Equal(t, mem, c.LoadHealthMemory(ctx))

	store.Inject(contracts.KeyHealthState, "{not json", time.Now().Add(time.Hour))
	assert.Empty(t, c.LoadHealthMemory(ctx))
}
