package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/ledger"
	"github.com/tiendabot/storefront/internal/notification"
	"github.com/tiendabot/storefront/internal/pricing"
)

// ErrUnknownCatalog is returned when a price list is requested for a catalog
// that does not exist.
var ErrUnknownCatalog = errors.New("unknown catalog")

// Footer is appended to every localized price sheet.
const Footer = "Base USD · refreshed every minute"

// RateSource resolves USD->currency rates.
type RateSource interface {
	Rate(ctx context.Context, currency string) (float64, error)
}

// Service implements the chat commands: localized price lists and gift
// balance reads and mutations.
type Service struct {
	rates    RateSource
	ledger   *ledger.Ledger
	catalogs []pricing.Catalog
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService wires the command service. A nil notifier disables notifications.
func NewService(rates RateSource, led *ledger.Ledger, catalogs []pricing.Catalog, notifier notification.Notifier, logger *slog.Logger) *Service {
	if len(catalogs) == 0 {
		catalogs = pricing.DefaultCatalogs()
	}
	return &Service{rates: rates, ledger: led, catalogs: catalogs, notifier: notifier, logger: logger}
}

// Line is one localized catalog entry.
type Line struct {
	Label   string  `json:"label"`
	BaseUSD float64 `json:"base_usd"`
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
}

// Sheet is a catalog rendered in a single currency.
type Sheet struct {
	Catalog  string           `json:"catalog"`
	Title    string           `json:"title"`
	Emoji    string           `json:"emoji"`
	Currency pricing.Currency `json:"currency"`
	Rate     float64          `json:"rate"`
	Lines    []Line           `json:"lines"`
	Footer   string           `json:"footer"`
}

// Catalogs lists the configured catalogs.
func (s *Service) Catalogs() []pricing.Catalog {
	out := make([]pricing.Catalog, len(s.catalogs))
	copy(out, s.catalogs)
	return out
}

// Currencies lists the supported display currencies.
func (s *Service) Currencies() []pricing.Currency {
	return pricing.Currencies()
}

// PriceList converts catalog into currency. Rate failures are returned as-is
// so callers show an error instead of a wrong price.
func (s *Service) PriceList(ctx context.Context, catalogKey, currency string) (Sheet, error) {
	cat, err := s.catalog(catalogKey)
	if err != nil {
		return Sheet{}, err
	}
	cur, err := pricing.LookupCurrency(currency)
	if err != nil {
		return Sheet{}, err
	}

	rate := 1.0
	if cur.Code != pricing.BaseCurrency {
		rate, err = s.rates.Rate(ctx, cur.Code)
		if err != nil {
			s.logger.Warn("price list rate lookup failed", "catalog", cat.Key, "currency", cur.Code, "error", err)
			return Sheet{}, err
		}
	}

	lines := make([]Line, 0, len(cat.Items))
	for _, item := range cat.Items {
		amount := pricing.Convert(item.USD, rate, cur.Code)
		lines = append(lines, Line{
			Label:   item.Label,
			BaseUSD: item.USD,
			Amount:  amount,
			Display: pricing.FormatPrice(amount, cur.Code),
		})
	}

	return Sheet{
		Catalog:  cat.Key,
		Title:    cat.Title,
		Emoji:    cat.Emoji,
		Currency: cur,
		Rate:     rate,
		Lines:    lines,
		Footer:   Footer,
	}, nil
}

func (s *Service) catalog(key string) (pricing.Catalog, error) {
	norm := strings.ToLower(strings.TrimSpace(key))
	for _, c := range s.catalogs {
		if c.Key == norm {
			return c, nil
		}
	}
	return pricing.Catalog{}, fmt.Errorf("%w: %q", ErrUnknownCatalog, key)
}

// BalanceView is a user's balance as returned to adapters.
type BalanceView struct {
	UserID  string  `json:"user_id"`
	Balance float64 `json:"balance"`
}

// Balance reads target's balance. An empty target means the caller. Reads are
// not restricted.
func (s *Service) Balance(ctx context.Context, caller access.Caller, target string) (BalanceView, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		target = caller.ID
	}
	bal, err := s.ledger.Balance(ctx, target)
	if err != nil {
		s.logger.Error("balance read failed", "user_id", target, "error", err)
		return BalanceView{}, err
	}
	return BalanceView{UserID: target, Balance: bal}, nil
}

// Credit adds a gift credit to target. Only staff and owners may call it.
func (s *Service) Credit(ctx context.Context, caller access.Caller, target string, amount float64) (BalanceView, error) {
	return s.mutate(ctx, caller, target, amount, "credit")
}

// Debit removes up to amount from target's balance. Only staff and owners may
// call it.
func (s *Service) Debit(ctx context.Context, caller access.Caller, target string, amount float64) (BalanceView, error) {
	return s.mutate(ctx, caller, target, amount, "debit")
}

func (s *Service) mutate(ctx context.Context, caller access.Caller, target string, amount float64, op string) (BalanceView, error) {
	if err := access.RequireBalanceWriter(caller); err != nil {
		s.logger.Warn("balance mutation rejected", "op", op, "caller_id", caller.ID, "user_id", target)
		return BalanceView{}, err
	}
	target = strings.TrimSpace(target)

	var (
		bal  float64
		err  error
		kind string
		body string
	)
	switch op {
	case "credit":
		bal, err = s.ledger.Credit(ctx, target, amount)
		kind = notification.KindBalanceCredited
		body = fmt.Sprintf("You received a gift credit of %s. New balance: %s", pricing.FormatBalance(amount), pricing.FormatBalance(bal))
	default:
		bal, err = s.ledger.Debit(ctx, target, amount)
		kind = notification.KindBalanceDebited
		body = fmt.Sprintf("%s was deducted from your balance. New balance: %s", pricing.FormatBalance(amount), pricing.FormatBalance(bal))
	}
	if err != nil {
		s.logger.Error("balance mutation failed", "op", op, "caller_id", caller.ID, "user_id", target, "amount", amount, "error", err)
		return BalanceView{}, err
	}

	s.logger.Info("balance updated", "op", op, "caller_id", caller.ID, "user_id", target, "amount", amount, "balance", bal)

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: target, Body: body}); err != nil {
			s.logger.Warn("balance notification failed", "user_id", target, "error", err)
		}
	}
	return BalanceView{UserID: target, Balance: bal}, nil
}

// TopBalances lists the n largest balances. Only staff and owners may call it.
func (s *Service) TopBalances(ctx context.Context, caller access.Caller, n int) ([]BalanceView, error) {
	if err := access.RequireBalanceWriter(caller); err != nil {
		return nil, err
	}
	records, err := s.ledger.Top(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]BalanceView, 0, len(records))
	for _, r := range records {
		out = append(out, BalanceView{UserID: r.UserID, Balance: r.Balance})
	}
	return out, nil
}
