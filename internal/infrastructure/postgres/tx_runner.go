package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/storefront-api/internal/application/payment"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ payment.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunPayment abre una transacción con los repos de órdenes y eventos de pago atados a ella:
// el cambio de estado y el registro del evento se confirman juntos o no se confirman.
func (r *TxRunner) RunPayment(ctx context.Context, fn func(
	orders repository.OrderRepository,
	events repository.PaymentEventRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewOrderRepository(tx), NewPaymentEventRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
