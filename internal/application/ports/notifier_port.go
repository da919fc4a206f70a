package ports

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// Notifier avisos operativos (nuevo pedido, cambio de pago). Best effort: el caller solo loguea el error.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *entity.Order) error
	PaymentUpdated(ctx context.Context, order *entity.Order, eventKind string) error
}

// ReceiptGenerator genera el comprobante PDF de una orden.
type ReceiptGenerator interface {
	Generate(order *entity.Order, customer *entity.User) ([]byte, error)
}

// NopNotifier descarta todos los avisos.
type NopNotifier struct{}

func (NopNotifier) OrderPlaced(context.Context, *entity.Order) error { return nil }
func (NopNotifier) PaymentUpdated(context.Context, *entity.Order, string) error { return nil }
