package contracts

import (
	"context"
	"time"
)

// SeriesFetcher downloads daily bars for one symbol
// Failures are reported as ErrNoData; callers treat them as absence.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, symbol string, lookbackDays int) (*PriceSeries, error)
}

// UniverseLoader returns the symbols to screen
// Implementations fall back to a default universe instead of failing.
type UniverseLoader interface {
	Load(ctx context.Context) *Universe
}

// SentimentSource returns the news signal; neutral on any failure
type SentimentSource interface {
	Fetch(ctx context.Context) Sentiment
}

// Notifier delivers plain-text messages
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// StateRow is one persisted key/value row
// The store is eventually consistent, so a key may appear in more than one row.
type StateRow struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StateStore is the external key/value table behind the day-state coordinator
// ⭐ SSOT: the only shared mutable resource of the job
type StateStore interface {
	Rows(ctx context.Context) ([]StateRow, error)
	UpdateRow(ctx context.Context, row StateRow, value string) error
	AppendRow(ctx context.Context, key, value string) error
	Close() error
}
