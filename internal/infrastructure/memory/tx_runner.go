package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/storefront-api/internal/application/payment"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ payment.TxRunner = (*TxRunner)(nil)

// TxRunner serializa los callbacks; no hay rollback, cada repo ya es atómico por operación.
type TxRunner struct {
	mu     sync.Mutex
	orders *OrderRepository
	events *PaymentEventRepository
}

func NewTxRunner(orders *OrderRepository, events *PaymentEventRepository) *TxRunner {
	return &TxRunner{orders: orders, events: events}
}

func (r *TxRunner) RunPayment(_ context.Context, fn func(
	orders repository.OrderRepository,
	events repository.PaymentEventRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.orders, r.events)
}
