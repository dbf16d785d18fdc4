package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tiendabot/storefront/internal/notification"
)

// Notifier delivers balance notifications as private Telegram messages. The
// destination is the recipient's Telegram user id.
type Notifier struct {
	api Sender
}

func NewNotifier(api Sender) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) Send(_ context.Context, message notification.Message) error {
	chatID, err := strconv.ParseInt(message.Destination, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram destination %q: %w", message.Destination, err)
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(chatID, message.Body)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
