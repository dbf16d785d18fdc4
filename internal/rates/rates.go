package rates

import (
	"context"
	"errors"
	"time"
)

// ErrRateUnavailable is returned when a rate cannot be fetched or the provider
// response lacks the requested currency.
var ErrRateUnavailable = errors.New("rate unavailable")

const baseCurrency = "USD"

// Entry is a memoized USD->currency rate.
type Entry struct {
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Provider returns every USD-based rate it knows in a single call.
type Provider interface {
	Latest(ctx context.Context) (map[string]float64, error)
}

// SharedStore is an optional second cache tier shared between processes.
type SharedStore interface {
	Get(ctx context.Context, currency string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
}
