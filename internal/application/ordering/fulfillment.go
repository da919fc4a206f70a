package ordering

import (
	"context"
	"fmt"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

// maxCASAttempts reintentos cuando otra escritura cambió el estado entre la lectura y el update.
const maxCASAttempts = 3

// UpdateFulfillment cambia el estado de despacho (admin) según la máquina de estados.
// Repetir el estado actual es válido y sirve para cambiar solo el tracking.
// Si la orden tiene orden espejo externa, se propaga best effort: un fallo no revierte el cambio
// local, se informa en MirrorError.
func (uc *OrderUseCase) UpdateFulfillment(ctx context.Context, orderID string, in dto.UpdateFulfillmentRequest) (*dto.UpdateFulfillmentResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	to := entity.OrderStatus(in.Status)
	if !to.Valid() {
		return nil, fmt.Errorf("%w: status desconocido %q", domain.ErrInvalidInput, in.Status)
	}

	var order *entity.Order
	for attempt := 1; ; attempt++ {
		current, err := uc.load(ctx, "", orderID, true)
		if err != nil {
			return nil, err
		}
		from := current.Status
		if from != to && !from.CanTransitionTo(to) {
			return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
		}
		if from == to && in.TrackingNumber == nil {
			return &dto.UpdateFulfillmentResponse{Order: *ToOrderResponse(current)}, nil
		}
		now := uc.now().UTC()
		ok, err := uc.orders.UpdateFulfillment(ctx, orderID, repository.FulfillmentChange{
			From: from, To: to, TrackingNumber: in.TrackingNumber, At: now,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			current.Status = to
			if in.TrackingNumber != nil {
				current.TrackingNumber = *in.TrackingNumber
			}
			current.UpdatedAt = now
			order = current
			break
		}
		if attempt == maxCASAttempts {
			return nil, fmt.Errorf("%w: la orden cambió de estado concurrentemente", domain.ErrConflict)
		}
	}

	uc.log.Info().Str("order_id", order.ID).Str("status", string(order.Status)).Msg("estado de despacho actualizado")
	out := &dto.UpdateFulfillmentResponse{Order: *ToOrderResponse(order)}
	if order.ExternalOrderID == "" || uc.mirror == nil {
		return out, nil
	}
	if err := uc.mirror.UpdateFulfillment(ctx, order.ExternalOrderID, string(order.Status), order.TrackingNumber); err != nil {
		uc.log.Warn().Err(err).Str("order_id", order.ID).Str("external_order_id", order.ExternalOrderID).
			Msg("no se pudo propagar el despacho a la orden externa")
		out.MirrorError = err.Error()
		return out, nil
	}
	out.MirrorSynced = true
	return out, nil
}
