// Package telegram envía avisos operativos de órdenes y pagos a un chat del equipo.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/pkg/money"
)

var _ ports.Notifier = (*Notifier)(nil)

// Sender lo que el notificador usa de *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier implementa ports.Notifier escribiendo en un chat de Telegram.
type Notifier struct {
	bot    Sender
	chatID int64
}

// New conecta con la Bot API (valida el token con getMe). endpoint vacío usa el de Telegram.
func New(token string, chatID int64, endpoint string) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram: TELEGRAM_BOT_TOKEN y TELEGRAM_CHAT_ID son obligatorios")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("telegram: conectar bot: %w", err)
	}
	return NewWithSender(bot, chatID), nil
}

// NewWithSender arma el notificador sobre un Sender ya construido.
func NewWithSender(bot Sender, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

func (n *Notifier) OrderPlaced(ctx context.Context, order *entity.Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 Nueva orden %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "Total: %s (%d unidades)\n", money.Format(order.Total, order.Currency), order.ItemCount())
	fmt.Fprintf(&b, "Pago: %s", order.PaymentMethod)
	return n.send(ctx, b.String())
}

func (n *Notifier) PaymentUpdated(ctx context.Context, order *entity.Order, eventKind string) error {
	icon := "💳"
	switch order.PaymentStatus {
	case entity.PaymentCompleted:
		icon = "✅"
	case entity.PaymentFailed:
		icon = "❌"
	case entity.PaymentRefunded:
		icon = "↩️"
	}
	text := fmt.Sprintf("%s Orden %s: pago %s (%s)\nTotal: %s",
		icon, order.OrderNumber, order.PaymentStatus, eventKind, money.Format(order.Total, order.Currency))
	return n.send(ctx, text)
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: enviar mensaje: %w", err)
	}
	return nil
}
