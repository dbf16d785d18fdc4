package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for zero, negative, NaN or infinite amounts.
	ErrInvalidAmount = errors.New("amount must be a positive finite number")

	// ErrInvalidUser is returned when no user identifier is supplied.
	ErrInvalidUser = errors.New("user id is required")

	// ErrStoreIO wraps any failure to read or write the backing store. A
	// mutation that fails with ErrStoreIO has not been applied.
	ErrStoreIO = errors.New("balance store failure")
)

// Store persists balances. Mutate runs one read-modify-write for a single
// user and must be atomic with respect to every other writer of the same
// backing store, including writers in other processes. Get and All return
// zero values for users that have no record.
type Store interface {
	Get(ctx context.Context, userID string) (decimal.Decimal, error)
	All(ctx context.Context) (map[string]decimal.Decimal, error)
	Mutate(ctx context.Context, userID string, apply func(current decimal.Decimal) decimal.Decimal) (decimal.Decimal, error)
}

// Record is a single user balance.
type Record struct {
	UserID  string  `json:"user_id"`
	Balance float64 `json:"balance"`
}

// Ledger keeps gift-credit balances. Serialization of concurrent mutations is
// delegated to the store so it also holds across processes.
type Ledger struct {
	store Store
}

// New builds a ledger over store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Balance returns the user's balance, or 0 when the user has no record.
func (l *Ledger) Balance(ctx context.Context, userID string) (float64, error) {
	bal, err := l.store.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: load: %w", ErrStoreIO, err)
	}
	return toFloat(bal), nil
}

// Credit adds amount to the user's balance and returns the new balance.
func (l *Ledger) Credit(ctx context.Context, userID string, amount float64) (float64, error) {
	return l.mutate(ctx, userID, amount, func(current, delta decimal.Decimal) decimal.Decimal {
		return current.Add(delta)
	})
}

// Debit subtracts amount from the user's balance, clamping at zero, and
// returns the new balance.
func (l *Ledger) Debit(ctx context.Context, userID string, amount float64) (float64, error) {
	return l.mutate(ctx, userID, amount, func(current, delta decimal.Decimal) decimal.Decimal {
		next := current.Sub(delta)
		if next.IsNegative() {
			return decimal.Zero
		}
		return next
	})
}

// Top returns up to n records ordered by balance, highest first.
func (l *Ledger) Top(ctx context.Context, n int) ([]Record, error) {
	balances, err := l.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", ErrStoreIO, err)
	}

	records := make([]Record, 0, len(balances))
	for id, bal := range balances {
		records = append(records, Record{UserID: id, Balance: toFloat(bal)})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Balance != records[j].Balance {
			return records[i].Balance > records[j].Balance
		}
		return records[i].UserID < records[j].UserID
	})
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

func (l *Ledger) mutate(ctx context.Context, userID string, amount float64, apply func(current, delta decimal.Decimal) decimal.Decimal) (float64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrInvalidUser
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}

	delta := decimal.NewFromFloat(amount)
	next, err := l.store.Mutate(ctx, userID, func(current decimal.Decimal) decimal.Decimal {
		return apply(current, delta).Round(2)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
	return toFloat(next), nil
}

func toFloat(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}
