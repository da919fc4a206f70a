package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// RetryPayment crea un nuevo intent para una orden propia cuyo pago sigue pendiente
// (por ejemplo cuando la pasarela falló durante el checkout). El monto es el total guardado.
func (uc *OrderUseCase) RetryPayment(ctx context.Context, userID, orderID string) (*dto.PaymentIntentRef, error) {
	order, err := uc.load(ctx, userID, orderID, false)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != entity.PaymentPending {
		return nil, fmt.Errorf("%w: el pago de la orden está %s", domain.ErrConflict, order.PaymentStatus)
	}
	if order.Status == entity.OrderCancelled {
		return nil, fmt.Errorf("%w: la orden está cancelada", domain.ErrConflict)
	}
	if err := uc.voidIntent(ctx, order); err != nil {
		return nil, err
	}
	ref, err := uc.requestIntent(ctx, order)
	if err != nil {
		uc.log.Error().Err(err).Str("order_id", order.ID).Msg("reintento de pago falló")
		return nil, err
	}
	return ref, nil
}

// voidIntent anula el intent vigente antes de emitir otro, para que no queden dos intents cobrables
// para la misma orden. Si el anterior ya se cobró (o se está cobrando) el reintento se rechaza.
func (uc *OrderUseCase) voidIntent(ctx context.Context, order *entity.Order) error {
	if order.PaymentIntentID == "" {
		return nil
	}
	if uc.gateway == nil {
		return fmt.Errorf("%w: pasarela de pago no configurada", domain.ErrUpstream)
	}
	current, err := uc.gateway.GetIntent(ctx, order.PaymentIntentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return upstream(err)
	}
	switch current.Status {
	case ports.IntentStatusCanceled:
		return nil
	case ports.IntentStatusSucceeded, ports.IntentStatusProcessing:
		return fmt.Errorf("%w: el intent %s ya está %s; esperar la confirmación del pago", domain.ErrConflict, current.ID, current.Status)
	}
	if err := uc.gateway.CancelIntent(ctx, order.PaymentIntentID); err != nil {
		return upstream(err)
	}
	uc.log.Info().Str("order_id", order.ID).Str("intent_id", order.PaymentIntentID).Msg("intent anterior anulado")
	return nil
}

// PaymentDetails consulta el intent en la pasarela. Solo lectura: no cambia el estado de la orden.
func (uc *OrderUseCase) PaymentDetails(ctx context.Context, userID, orderID string, isAdmin bool) (*dto.PaymentDetailsResponse, error) {
	order, err := uc.load(ctx, userID, orderID, isAdmin)
	if err != nil {
		return nil, err
	}
	if order.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: la orden no tiene payment intent", domain.ErrNotFound)
	}
	if uc.gateway == nil {
		return nil, fmt.Errorf("%w: pasarela de pago no configurada", domain.ErrUpstream)
	}
	intent, err := uc.gateway.GetIntent(ctx, order.PaymentIntentID)
	if err != nil {
		return nil, upstream(err)
	}
	return &dto.PaymentDetailsResponse{
		OrderID:         order.ID,
		PaymentIntentID: intent.ID,
		GatewayStatus:   intent.Status,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		PaymentStatus:   string(order.PaymentStatus),
	}, nil
}

// RequestRefund pide el reembolso a la pasarela (admin). La orden no cambia aquí:
// pasa a refunded cuando llega el evento charge.refunded.
func (uc *OrderUseCase) RequestRefund(ctx context.Context, orderID string, in dto.RefundRequest) (*dto.RefundResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	order, err := uc.load(ctx, "", orderID, true)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != entity.PaymentCompleted {
		return nil, fmt.Errorf("%w: solo se reembolsan órdenes con pago completed (actual: %s)", domain.ErrConflict, order.PaymentStatus)
	}
	if order.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: la orden no tiene payment intent", domain.ErrConflict)
	}
	if in.Amount != nil && in.Amount.GreaterThan(order.Total) {
		return nil, fmt.Errorf("%w: amount supera el total de la orden", domain.ErrInvalidInput)
	}
	if uc.gateway == nil {
		return nil, fmt.Errorf("%w: pasarela de pago no configurada", domain.ErrUpstream)
	}
	ref, err := uc.gateway.Refund(ctx, order.PaymentIntentID, in.Amount)
	if err != nil {
		return nil, upstream(err)
	}
	uc.log.Info().Str("order_id", order.ID).Str("refund_id", ref.ID).Str("reason", in.Reason).Msg("reembolso solicitado")
	return &dto.RefundResponse{
		RefundID: ref.ID,
		Status:   ref.Status,
		Amount:   ref.Amount,
		Message:  "Reembolso solicitado; la orden pasa a refunded al confirmarlo la pasarela.",
	}, nil
}

func upstream(err error) error {
	if errors.Is(err, domain.ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
}
