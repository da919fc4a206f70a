package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func order() *entity.Order {
	return &entity.Order{
		OrderNumber:   "ORD-20260101-ABCDEF012345",
		Items:         []entity.OrderItem{{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(100)}},
		PaymentMethod: entity.PaymentMethodStripe,
		Currency:      "usd",
		Total:         decimal.RequireFromString("230"),
		PaymentStatus: entity.PaymentCompleted,
	}
}

func TestOrderPlaced_EnviaResumen(t *testing.T) {
	f := &fakeSender{}
	n := NewWithSender(f, 42)
	require.NoError(t, n.OrderPlaced(context.Background(), order()))

	require.Len(t, f.sent, 1)
	assert.Equal(t, int64(42), f.sent[0].ChatID)
	assert.Contains(t, f.sent[0].Text, "ORD-20260101-ABCDEF012345")
	assert.Contains(t, f.sent[0].Text, "230.00 USD")
	assert.Contains(t, f.sent[0].Text, "2 unidades")
}

func TestPaymentUpdated_PropagaError(t *testing.T) {
	n := NewWithSender(&fakeSender{err: errors.New("429 Too Many Requests")}, 42)
	err := n.PaymentUpdated(context.Background(), order(), entity.EventIntentSucceeded)
	assert.ErrorContains(t, err, "429")
}

func TestSend_ContextoCancelado(t *testing.T) {
	f := &fakeSender{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewWithSender(f, 1).OrderPlaced(ctx, order()), context.Canceled)
	assert.Empty(t, f.sent)
}

func TestNew_SinCredenciales(t *testing.T) {
	_, err := New("", 0, "")
	assert.Error(t, err)
}
