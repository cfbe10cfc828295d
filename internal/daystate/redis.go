package daystate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	redisclient "github.com/HarminderAI/Vedic-Market-Energy/pkg/redis"
)

// RedisStore keeps run state in one hash: field = row id, value = JSON row.
// Row ids come from a companion counter key.
type RedisStore struct {
	client *redisclient.Client
	hash   string
}

type redisRow struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRedisStore wraps an enabled client
func NewRedisStore(client *redisclient.Client, hash string) (*RedisStore, error) {
	if client == nil || !client.Enabled() {
		return nil, fmt.Errorf("redis state store requires an enabled client")
	}
	if hash == "" {
		return nil, fmt.Errorf("redis state key is empty")
	}
	return &RedisStore{client: client, hash: hash}, nil
}

func (s *RedisStore) seqKey() string {
	return s.hash + ":seq"
}

// Rows implements contracts.StateStore
func (s *RedisStore) Rows(ctx context.Context) ([]contracts.StateRow, error) {
	fields, err := s.client.Redis().HGetAll(ctx, s.hash).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.hash, err)
	}

	out := make([]contracts.StateRow, 0, len(fields))
	for field, raw := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		var r redisRow
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			continue
		}
		out = append(out, contracts.StateRow{ID: id, Key: r.Key, Value: r.Value, UpdatedAt: r.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *RedisStore) put(ctx context.Context, id int64, key, value string) error {
	data, err := json.Marshal(redisRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.client.Redis().HSet(ctx, s.hash, strconv.FormatInt(id, 10), data).Err()
}

// UpdateRow implements contracts.StateStore
func (s *RedisStore) UpdateRow(ctx context.Context, row contracts.StateRow, value string) error {
	if err := s.put(ctx, row.ID, row.Key, value); err != nil {
		return fmt.Errorf("failed to update row %d: %w", row.ID, err)
	}
	return nil
}

// AppendRow implements contracts.StateStore
func (s *RedisStore) AppendRow(ctx context.Context, key, value string) error {
	id, err := s.client.Redis().Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate row id: %w", err)
	}
	if err := s.put(ctx, id, key, value); err != nil {
		return fmt.Errorf("failed to append %s: %w", key, err)
	}
	return nil
}

// Close implements contracts.StateStore
func (s *RedisStore) Close() error {
	return s.client.Close()
}
