package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists balances in the gift_balances table, one row per
// user. Mutate locks the user's row for the duration of its transaction.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the balances table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS gift_balances (
			user_id    TEXT PRIMARY KEY,
			balance    NUMERIC(14, 2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (decimal.Decimal, error) {
	var raw string
	err := s.db.QueryRow(ctx, `SELECT balance::text FROM gift_balances WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (s *PostgresStore) All(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id, balance::text FROM gift_balances`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		bal, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", id, err)
		}
		balances[id] = bal
	}
	return balances, rows.Err()
}

func (s *PostgresStore) Mutate(ctx context.Context, userID string, apply func(decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// The row must exist before FOR UPDATE can lock it.
	if _, err := tx.Exec(ctx, `INSERT INTO gift_balances (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return decimal.Zero, fmt.Errorf("ensure balance row: %w", err)
	}

	var raw string
	if err := tx.QueryRow(ctx, `SELECT balance::text FROM gift_balances WHERE user_id = $1 FOR UPDATE`, userID).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("lock balance: %w", err)
	}
	current, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance of %s: %w", userID, err)
	}

	next := apply(current)
	if _, err := tx.Exec(ctx, `UPDATE gift_balances SET balance = $2::numeric, updated_at = now() WHERE user_id = $1`, userID, next.String()); err != nil {
		return decimal.Zero, fmt.Errorf("write balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}
