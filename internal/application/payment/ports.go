package payment

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción que cubre órdenes y registro de eventos:
// el cambio de estado y el id del evento se confirman juntos o ninguno.
// Si fn retorna error se hace rollback.
type TxRunner interface {
	RunPayment(ctx context.Context, fn func(
		orders repository.OrderRepository,
		events repository.PaymentEventRepository,
	) error) error
}
