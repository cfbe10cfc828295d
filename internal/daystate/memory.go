package daystate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
)

// MemoryStore is an in-process StateStore. Tests use Inject to create
// duplicate rows and Fail to simulate an unreachable backend.
type MemoryStore struct {
	mu     sync.Mutex
	rows   []contracts.StateRow
	nextID int64
	now      func() time.Time
	err      error
	writeErr error
	writes   int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// WithClock sets the timestamp source for UpdatedAt
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

// Fail makes every following call return err (nil restores service)
func (m *MemoryStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FailWrites makes UpdateRow and AppendRow return err while reads keep
// working (nil restores service)
func (m *MemoryStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Inject appends a raw row, bypassing the read-then-write protocol
func (m *MemoryStore) Inject(key, value string, updatedAt time.Time) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows = append(m.rows, contracts.StateRow{ID: m.nextID, Key: key, Value: value, UpdatedAt: updatedAt})
	return m.nextID
}

// Writes returns the number of successful UpdateRow/AppendRow calls
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Rows implements contracts.StateStore
func (m *MemoryStore) Rows(ctx context.Context) ([]contracts.StateRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]contracts.StateRow, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

// UpdateRow implements contracts.StateStore
func (m *MemoryStore) UpdateRow(ctx context.Context, row contracts.StateRow, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := range m.rows {
		if m.rows[i].ID == row.ID {
			m.rows[i].Value = value
			m.rows[i].UpdatedAt = m.now()
			m.writes++
			return nil
		}
	}
	return fmt.Errorf("row %d: %w", row.ID, contracts.ErrNotFound)
}

// AppendRow implements contracts.StateStore
func (m *MemoryStore) AppendRow(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.nextID++
	m.rows = append(m.rows, contracts.StateRow{ID: m.nextID, Key: key, Value: value, UpdatedAt: m.now()})
	m.writes++
	return nil
}

// Close implements contracts.StateStore
func (m *MemoryStore) Close() error {
	return nil
}
