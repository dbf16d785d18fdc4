package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets a balance directly on an in-memory store.
func SeedBalance(s *MemoryStore, userID string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = decimal.NewFromFloat(amount)
}
