package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/ledger"
	"github.com/tiendabot/storefront/internal/logging"
	"github.com/tiendabot/storefront/internal/rates"
	"github.com/tiendabot/storefront/internal/storefront"
)

type fakeSender struct {
	sent     []string
	chats    []int64
	markups  []any
	answers  []string
	failSend bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.failSend {
		return tgbotapi.Message{}, errors.New("forbidden: bot can't initiate conversation")
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m.Text)
		f.chats = append(f.chats, m.ChatID)
		f.markups = append(f.markups, m.ReplyMarkup)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.answers = append(f.answers, cb.Text)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fixedRates map[string]float64

func (r fixedRates) Rate(_ context.Context, currency string) (float64, error) {
	v, ok := r[currency]
	if !ok {
		return 0, rates.ErrRateUnavailable
	}
	return v, nil
}

func command(from int64, text string) tgbotapi.Update {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmdLen = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		From:     &tgbotapi.User{ID: from},
		Chat:     &tgbotapi.Chat{ID: from},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func newHandler() (*Handler, *fakeSender) {
	logger := logging.Discard()
	svc := storefront.NewService(fixedRates{"ARS": 900}, ledger.New(ledger.NewMemoryStore()), nil, nil, logger)
	sender := &fakeSender{}
	return NewHandler(sender, svc, access.NewDirectory([]string{"1"}, []string{"2"}), logger), sender
}

func TestPricesCommand(t *testing.T) {
	h, sender := newHandler()
	ctx := context.Background()

	h.HandleUpdate(ctx, command(9, "/prices pavos ARS"))
	out := sender.last()
	assert.Contains(t, out, "🪙 1.000 Pavos — 5,400 ARS")
	assert.Contains(t, out, "38,000 ARS")
	assert.True(t, strings.HasSuffix(out, storefront.Footer))

	h.HandleUpdate(ctx, command(9, "/prices pavos JPY"))
	assert.Contains(t, sender.last(), "Unsupported currency")

	h.HandleUpdate(ctx, command(9, "/prices pavos EUR"))
	assert.Contains(t, sender.last(), "Exchange rate unavailable")

	h.HandleUpdate(ctx, command(9, "/prices"))
	assert.Contains(t, sender.last(), "Usage: /prices")
}

func TestBalanceCommands(t *testing.T) {
	h, sender := newHandler()
	ctx := context.Background()

	h.HandleUpdate(ctx, command(2, "/credit 9 10"))
	assert.Equal(t, "✅ Credited 10.00 for 9. New balance: 10.00", sender.last())

	h.HandleUpdate(ctx, command(1, "/debit 9 2,5"))
	assert.Equal(t, "✅ Debited 2.50 for 9. New balance: 7.50", sender.last())

	h.HandleUpdate(ctx, command(9, "/credit 9 100"))
	assert.Contains(t, sender.last(), "Only staff")

	h.HandleUpdate(ctx, command(9, "/balance"))
	assert.Equal(t, "Your gift balance: 7.50", sender.last())

	h.HandleUpdate(ctx, command(9, "/balance 5"))
	assert.Equal(t, "Gift balance of 5: 0.00", sender.last())

	h.HandleUpdate(ctx, command(2, "/credit 9 abc"))
	assert.Contains(t, sender.last(), "positive number")

	h.HandleUpdate(ctx, command(2, "/top"))
	assert.Equal(t, "Top balances:\n1. 9 — 7.50", sender.last())
}

func TestStartShowsStaffCommandsOnlyToStaff(t *testing.T) {
	h, sender := newHandler()
	ctx := context.Background()

	h.HandleUpdate(ctx, command(9, "/start"))
	assert.NotContains(t, sender.last(), "/credit")

	h.HandleUpdate(ctx, command(1, "/start"))
	assert.Contains(t, sender.last(), "/credit")
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	h, sender := newHandler()
	updates := make(chan tgbotapi.Update, 2)
	updates <- command(9, "/currencies")
	updates <- tgbotapi.Update{}
	close(updates)

	h.Run(context.Background(), updates)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "ARS")
}
