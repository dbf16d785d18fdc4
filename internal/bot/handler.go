package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/ledger"
	"github.com/tiendabot/storefront/internal/pricing"
	"github.com/tiendabot/storefront/internal/rates"
	"github.com/tiendabot/storefront/internal/storefront"
)

const defaultTop = 10

// Sender is the part of *tgbotapi.BotAPI the handler needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	api       Sender
	svc       *storefront.Service
	directory *access.Directory
	logger    *slog.Logger
}

func NewHandler(api Sender, svc *storefront.Service, directory *access.Directory, logger *slog.Logger) *Handler {
	return &Handler{api: api, svc: svc, directory: directory, logger: logger}
}

// Run consumes updates until ctx is done or the channel closes.
func (h *Handler) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, upd)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		h.handleCallback(ctx, upd.CallbackQuery)
		return
	}

	msg := upd.Message
	if msg == nil || msg.From == nil || !msg.IsCommand() {
		return
	}

	caller := h.directory.Caller(strconv.FormatInt(msg.From.ID, 10))
	args := strings.Fields(msg.CommandArguments())
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		h.reply(chatID, helpText(caller))
	case "setup":
		h.handleSetup(chatID, caller)
	case "currencies":
		h.reply(chatID, h.currencies())
	case "prices":
		h.handlePrices(ctx, chatID, args)
	case "balance":
		h.handleBalance(ctx, chatID, caller, args)
	case "credit", "debit":
		h.handleMutation(ctx, chatID, caller, msg.Command(), args)
	case "top":
		h.handleTop(ctx, chatID, caller, args)
	default:
		h.reply(chatID, "Unknown command. Send /start for the list.")
	}
}

func helpText(caller access.Caller) string {
	var b strings.Builder
	b.WriteString("Hi! I quote store prices in your currency.\n\n")
	b.WriteString("/currencies — supported currencies\n")
	b.WriteString("/prices <catalog> <currency> — price list, e.g. /prices pavos ARS\n")
	b.WriteString("/balance [user] — gift balance")
	if caller.CanWriteBalances() {
		b.WriteString("\n\nStaff:\n")
		b.WriteString("/credit <user> <amount>\n")
		b.WriteString("/debit <user> <amount>\n")
		b.WriteString("/top [n]\n")
		b.WriteString("/setup — post the catalogs with a currency picker")
	}
	return b.String()
}

func (h *Handler) currencies() string {
	var b strings.Builder
	b.WriteString("Supported currencies:\n")
	for _, c := range h.svc.Currencies() {
		fmt.Fprintf(&b, "%s %s — %s\n", c.Flag, c.Code, c.Label)
	}
	b.WriteString("\n")
	b.WriteString(storefront.Footer)
	return b.String()
}

func (h *Handler) handlePrices(ctx context.Context, chatID int64, args []string) {
	if len(args) != 2 {
		keys := make([]string, 0)
		for _, c := range h.svc.Catalogs() {
			keys = append(keys, c.Key)
		}
		h.reply(chatID, "Usage: /prices <catalog> <currency>\nCatalogs: "+strings.Join(keys, ", "))
		return
	}

	sheet, err := h.svc.PriceList(ctx, args[0], args[1])
	if err != nil {
		h.reply(chatID, describe(err))
		return
	}
	h.reply(chatID, RenderSheet(sheet))
}

// RenderSheet formats a price sheet as a chat message.
func RenderSheet(sheet storefront.Sheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s · %s %s\n\n", sheet.Emoji, sheet.Title, sheet.Currency.Flag, sheet.Currency.Code)
	for _, line := range sheet.Lines {
		fmt.Fprintf(&b, "%s — %s\n", line.Label, line.Display)
	}
	b.WriteString("\n")
	b.WriteString(sheet.Footer)
	return b.String()
}

func (h *Handler) handleBalance(ctx context.Context, chatID int64, caller access.Caller, args []string) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	view, err := h.svc.Balance(ctx, caller, target)
	if err != nil {
		h.reply(chatID, describe(err))
		return
	}
	if view.UserID == caller.ID {
		h.reply(chatID, "Your gift balance: "+pricing.FormatBalance(view.Balance))
		return
	}
	h.reply(chatID, fmt.Sprintf("Gift balance of %s: %s", view.UserID, pricing.FormatBalance(view.Balance)))
}

func (h *Handler) handleMutation(ctx context.Context, chatID int64, caller access.Caller, op string, args []string) {
	if len(args) != 2 {
		h.reply(chatID, fmt.Sprintf("Usage: /%s <user> <amount>", op))
		return
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		h.reply(chatID, describe(ledger.ErrInvalidAmount))
		return
	}

	var view storefront.BalanceView
	if op == "credit" {
		view, err = h.svc.Credit(ctx, caller, args[0], amount)
	} else {
		view, err = h.svc.Debit(ctx, caller, args[0], amount)
	}
	if err != nil {
		h.reply(chatID, describe(err))
		return
	}

	verb := "Credited"
	if op == "debit" {
		verb = "Debited"
	}
	h.reply(chatID, fmt.Sprintf("✅ %s %s for %s. New balance: %s", verb, pricing.FormatBalance(amount), view.UserID, pricing.FormatBalance(view.Balance)))
}

func (h *Handler) handleTop(ctx context.Context, chatID int64, caller access.Caller, args []string) {
	n := defaultTop
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	top, err := h.svc.TopBalances(ctx, caller, n)
	if err != nil {
		h.reply(chatID, describe(err))
		return
	}
	if len(top) == 0 {
		h.reply(chatID, "No balances yet.")
		return
	}
	var b strings.Builder
	b.WriteString("Top balances:\n")
	for i, v := range top {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, v.UserID, pricing.FormatBalance(v.Balance))
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func parseAmount(raw string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
}

// describe turns domain errors into user-facing replies.
func describe(err error) string {
	switch {
	case errors.Is(err, storefront.ErrUnknownCatalog):
		return "❌ Unknown catalog."
	case errors.Is(err, pricing.ErrUnsupportedCurrency):
		return "❌ Unsupported currency. See /currencies."
	case errors.Is(err, rates.ErrRateUnavailable):
		return "⚠️ Exchange rate unavailable right now, try again in a moment."
	case errors.Is(err, access.ErrUnauthorized):
		return "⛔ Only staff can do that."
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "❌ Amount must be a positive number."
	case errors.Is(err, ledger.ErrInvalidUser):
		return "❌ Missing user."
	default:
		return "❌ Something went wrong, try again later."
	}
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Warn("telegram send failed", "chat_id", chatID, "error", err)
	}
}
