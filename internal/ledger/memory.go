package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps balances in process memory. Useful for tests and local
// development.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[string]decimal.Decimal)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID], nil
}

func (s *MemoryStore) All(_ context.Context) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(s.balances))
	for k, v := range s.balances {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Mutate(_ context.Context, userID string, apply func(decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := apply(s.balances[userID])
	s.balances[userID] = next
	return next, nil
}
