package repository

import (
	"context"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// FulfillmentChange cambio condicional de estado de fulfillment.
// Solo se aplica si la orden sigue en From.
type FulfillmentChange struct {
	From           entity.OrderStatus
	To             entity.OrderStatus
	TrackingNumber *string // nil = no tocar
	At             time.Time
}

// PaymentChange cambio condicional del estado de pago. Solo se aplica si la orden sigue en From.
// Status opcional permite mover también el estado de la orden en la misma escritura (reembolso).
type PaymentChange struct {
	From   entity.PaymentStatus
	To     entity.PaymentStatus
	Status *entity.OrderStatus
	At     time.Time
}

// OrderRepository define el puerto de persistencia para Order (DIP).
// Los totales e items nunca se reescriben después de Create.
type OrderRepository interface {
	// Create falla con domain.ErrDuplicate si el número de orden ya existe.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetByPaymentIntentID resuelve la orden desde el id del intent (eventos que no traen metadata).
	GetByPaymentIntentID(ctx context.Context, intentID string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// ListAll lista todas las órdenes; status vacío = todos.
	ListAll(ctx context.Context, status string, limit, offset int) ([]*entity.Order, error)
	Count(ctx context.Context, status string) (int, error)
	// UpdateFulfillment devuelve false si la orden ya no estaba en change.From.
	UpdateFulfillment(ctx context.Context, id string, change FulfillmentChange) (bool, error)
	// UpdatePaymentStatus devuelve false si la orden ya no estaba en change.From.
	UpdatePaymentStatus(ctx context.Context, id string, change PaymentChange) (bool, error)
	SetPaymentIntent(ctx context.Context, id, intentID string, at time.Time) error
}
