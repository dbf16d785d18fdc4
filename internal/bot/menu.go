package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/pricing"
)

const (
	pricesCallback   = "prices"
	currenciesPerRow = 2
	menuRule         = "━━━━━━━━━━━━━━━━━━"
)

// handleSetup posts every catalog with its USD list and a currency picker.
func (h *Handler) handleSetup(chatID int64, caller access.Caller) {
	if !caller.CanWriteBalances() {
		h.reply(chatID, describe(access.ErrUnauthorized))
		return
	}
	for _, catalog := range h.svc.Catalogs() {
		msg := tgbotapi.NewMessage(chatID, RenderMenu(catalog))
		msg.ReplyMarkup = currencyKeyboard(catalog.Key, h.svc.Currencies())
		if _, err := h.api.Send(msg); err != nil {
			h.logger.Warn("telegram send failed", "chat_id", chatID, "catalog", catalog.Key, "error", err)
		}
	}
}

// RenderMenu formats a catalog's USD list for the picker message.
func RenderMenu(catalog pricing.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", catalog.Emoji, strings.ToUpper(catalog.Title))
	if catalog.Description != "" {
		b.WriteString(catalog.Description)
		b.WriteString("\n\n")
	}
	b.WriteString(menuRule + "\n")
	for _, item := range catalog.Items {
		fmt.Fprintf(&b, "%s — US$%s\n", item.Label, pricing.FormatAmount(item.USD))
	}
	b.WriteString(menuRule + "\n\n")
	b.WriteString("⬇️ Pick your currency below")
	return b.String()
}

func currencyKeyboard(catalogKey string, currencies []pricing.Currency) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range currencies {
		data := pricesCallback + ":" + catalogKey + ":" + c.Code
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Flag+" "+c.Code, data))
		if len(row) == currenciesPerRow {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// handleCallback answers a currency pick with the converted sheet, sent
// privately to the user who pressed the button.
func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	notice := ""
	defer func() {
		if _, err := h.api.Request(tgbotapi.NewCallback(q.ID, notice)); err != nil {
			h.logger.Warn("telegram callback answer failed", "error", err)
		}
	}()

	parts := strings.Split(q.Data, ":")
	if len(parts) != 3 || parts[0] != pricesCallback || q.From == nil {
		return
	}

	sheet, err := h.svc.PriceList(ctx, parts[1], parts[2])
	if err != nil {
		notice = describe(err)
		return
	}
	if _, err := h.api.Send(tgbotapi.NewMessage(q.From.ID, RenderSheet(sheet))); err != nil {
		h.logger.Warn("telegram send failed", "chat_id", q.From.ID, "error", err)
		notice = "Open a private chat with me first, then pick again."
	}
}

