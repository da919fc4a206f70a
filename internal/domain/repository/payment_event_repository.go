package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// PaymentEventRepository registro de eventos de webhook ya procesados (idempotencia por ID).
type PaymentEventRepository interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	// Record falla con domain.ErrDuplicate si el evento ya fue registrado.
	Record(ctx context.Context, event *entity.PaymentEvent) error
}
