package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.PaymentEventRepository = (*PaymentEventRepo)(nil)

// PaymentEventRepo registro de eventos de webhook procesados.
type PaymentEventRepo struct {
	q Querier
}

func NewPaymentEventRepository(q Querier) *PaymentEventRepo {
	return &PaymentEventRepo{q: q}
}

// Seen indica si el evento ya fue procesado.
func (r *PaymentEventRepo) Seen(ctx context.Context, eventID string) (bool, error) {
	var seen bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payment_events WHERE id = $1)`, eventID).Scan(&seen); err != nil {
		return false, fmt.Errorf("check payment event: %w", err)
	}
	return seen, nil
}

// Record registra el evento; la PK sobre id detecta reentregas concurrentes.
func (r *PaymentEventRepo) Record(ctx context.Context, e *entity.PaymentEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payment_events (id, kind, order_id, outcome, reason, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Kind, nullIfEmpty(e.OrderID), e.Outcome, e.Reason, e.ProcessedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert payment event: %w", err)
	}
	return nil
}
