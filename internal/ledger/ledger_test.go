package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedger_CreditAccumulates(t *testing.T) {
	l := New(NewMemoryStore())
	ctx := context.Background()

	if _, err := l.Credit(ctx, "u1", 10); err != nil {
		t.Fatalf("credit 10: %v", err)
	}
	bal, err := l.Credit(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("credit 5: %v", err)
	}
	if bal != 15 {
		t.Fatalf("expected returned balance 15, got %v", bal)
	}

	got, err := l.Balance(ctx, "u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got != 15 {
		t.Fatalf("expected balance 15, got %v", got)
	}
}

func TestLedger_UnknownUserIsZero(t *testing.T) {
	l := New(NewMemoryStore())
	bal, err := l.Balance(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 0 {
		t.Fatalf("expected 0, got %v", bal)
	}
}

func TestLedger_DebitClampsAtZero(t *testing.T) {
	store := NewMemoryStore()
	SeedBalance(store, "u1", 15)
	l := New(store)
	ctx := context.Background()

	bal, err := l.Debit(ctx, "u1", 100)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if bal != 0 {
		t.Fatalf("expected clamp to 0, got %v", bal)
	}
	if got, _ := l.Balance(ctx, "u1"); got != 0 {
		t.Fatalf("expected stored 0, got %v", got)
	}

	SeedBalance(store, "u2", 20)
	if bal, _ := l.Debit(ctx, "u2", 7.5); bal != 12.5 {
		t.Fatalf("expected 12.5, got %v", bal)
	}
}

func TestLedger_RoundsToCents(t *testing.T) {
	l := New(NewMemoryStore())
	ctx := context.Background()

	l.Credit(ctx, "u1", 0.1)
	bal, err := l.Credit(ctx, "u1", 0.2)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if bal != 0.3 {
		t.Fatalf("expected 0.3, got %v", bal)
	}

	bal, _ = l.Credit(ctx, "u1", 1.005)
	if bal != 1.31 {
		t.Fatalf("expected 1.31, got %v", bal)
	}
}

func TestLedger_RejectsInvalidAmounts(t *testing.T) {
	store := NewMemoryStore()
	SeedBalance(store, "u1", 5)
	l := New(store)
	ctx := context.Background()

	for _, amount := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		if _, err := l.Credit(ctx, "u1", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("credit %v: expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := l.Debit(ctx, "u1", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("debit %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if _, err := l.Credit(ctx, " ", 1); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
	if got, _ := l.Balance(ctx, "u1"); got != 5 {
		t.Fatalf("balance changed to %v", got)
	}
}

func TestLedger_ConcurrentCreditsAreSerialized(t *testing.T) {
	l := New(NewMemoryStore())
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Credit(ctx, "u1", 10); err != nil {
				t.Errorf("credit: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := l.Balance(ctx, "u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got != workers*10 {
		t.Fatalf("lost update: expected %d, got %v", workers*10, got)
	}
}

func TestLedger_TwoConcurrentCreditsFromZero(t *testing.T) {
	l := New(NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Credit(ctx, "u", 10)
		}()
	}
	wg.Wait()

	if got, _ := l.Balance(ctx, "u"); got != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
}

type failingStore struct {
	*MemoryStore
	loadErr  error
	writeErr error
}

func (s *failingStore) Get(ctx context.Context, userID string) (decimal.Decimal, error) {
	if s.loadErr != nil {
		return decimal.Zero, s.loadErr
	}
	return s.MemoryStore.Get(ctx, userID)
}

func (s *failingStore) All(ctx context.Context) (map[string]decimal.Decimal, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.MemoryStore.All(ctx)
}

func (s *failingStore) Mutate(ctx context.Context, userID string, apply func(decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	if s.loadErr != nil {
		return decimal.Zero, s.loadErr
	}
	if s.writeErr != nil {
		return decimal.Zero, s.writeErr
	}
	return s.MemoryStore.Mutate(ctx, userID, apply)
}

func TestLedger_SaveFailureIsNotApplied(t *testing.T) {
	mem := NewMemoryStore()
	SeedBalance(mem, "u1", 40)
	store := &failingStore{MemoryStore: mem, writeErr: errors.New("disk full")}
	l := New(store)
	ctx := context.Background()

	if _, err := l.Credit(ctx, "u1", 10); !errors.Is(err, ErrStoreIO) {
		t.Fatalf("expected ErrStoreIO, got %v", err)
	}

	store.writeErr = nil
	if got, _ := l.Balance(ctx, "u1"); got != 40 {
		t.Fatalf("failed save leaked into balance: %v", got)
	}
}

func TestLedger_LoadFailure(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(), loadErr: errors.New("unreadable")}
	l := New(store)

	if _, err := l.Balance(context.Background(), "u1"); !errors.Is(err, ErrStoreIO) {
		t.Fatalf("expected ErrStoreIO on read, got %v", err)
	}
	if _, err := l.Debit(context.Background(), "u1", 1); !errors.Is(err, ErrStoreIO) {
		t.Fatalf("expected ErrStoreIO on debit, got %v", err)
	}
	if _, err := l.Top(context.Background(), 1); !errors.Is(err, ErrStoreIO) {
		t.Fatalf("expected ErrStoreIO on top, got %v", err)
	}
}

func TestLedger_Top(t *testing.T) {
	store := NewMemoryStore()
	SeedBalance(store, "a", 5)
	SeedBalance(store, "b", 50)
	SeedBalance(store, "c", 50)
	SeedBalance(store, "d", 1)
	l := New(store)

	top, err := l.Top(context.Background(), 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []Record{{"b", 50}, {"c", 50}, {"a", 5}}
	if len(top) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(top))
	}
	for i := range want {
		if top[i] != want[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, want[i], top[i])
		}
	}
}
