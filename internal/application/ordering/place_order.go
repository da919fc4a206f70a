package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// Resultados para la métrica de órdenes.
const (
	outcomeOK            = "ok"
	outcomePaymentFailed = "payment_failed"
	outcomeRejected      = "rejected"
	outcomeError         = "error"
)

// PlaceOrder checkout:
//  1. valida el request y arma el carrito (precios del request, no del catálogo);
//  2. calcula subtotal, impuesto, envío y total;
//  3. genera número de orden único;
//  4. persiste la orden pending/pending ANTES de hablar con la pasarela;
//  5. crea el payment intent con orderId en la metadata.
//
// Si la pasarela falla la orden queda persistida en pending/pending y no se revierte: se devuelve
// la respuesta con PaymentError junto a un error ErrUpstream, y el cliente puede reintentar con RetryPayment.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, userID string, in dto.PlaceOrderRequest) (*dto.PlaceOrderResponse, error) {
	ctx, span := tracer.Start(ctx, "orders.PlaceOrder")
	defer span.End()

	if err := in.Validate(); err != nil {
		uc.metrics.OrderPlaced(outcomeRejected)
		return nil, err
	}
	cart := entity.NewCart()
	for _, it := range in.Items {
		if err := cart.Add(entity.CartLine{
			ProductID: it.ProductID, VariantID: it.VariantID, Title: it.Title,
			Price: it.Price, Quantity: it.Quantity, Image: it.Image,
		}); err != nil {
			uc.metrics.OrderPlaced(outcomeRejected)
			return nil, err
		}
	}
	totals := uc.cfg.Pricing.Compute(cart)

	shipping := in.ShippingAddress.ToEntity()
	shipping.Type = entity.AddressShipping
	billing := shipping
	if in.BillingAddress != nil {
		billing = in.BillingAddress.ToEntity()
	}
	billing.Type = entity.AddressBilling

	now := uc.now().UTC()
	order := &entity.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           cart.ToOrderItems(),
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   in.PaymentMethod,
		Currency:        uc.cfg.Currency,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
		Status:          entity.OrderPending,
		PaymentStatus:   entity.PaymentPending,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.create(ctx, order); err != nil {
		uc.metrics.OrderPlaced(outcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist order")
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.String("order.number", order.OrderNumber))

	intent, err := uc.requestIntent(ctx, order)
	if err != nil {
		uc.metrics.OrderPlaced(outcomePaymentFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "create payment intent")
		uc.log.Error().Err(err).Str("order_id", order.ID).Str("order_number", order.OrderNumber).
			Msg("orden creada sin payment intent; queda pending/pending para reintento")
		return &dto.PlaceOrderResponse{Order: *ToOrderResponse(order), PaymentError: err.Error()}, err
	}

	uc.metrics.OrderPlaced(outcomeOK)
	if err := uc.notifier.OrderPlaced(ctx, order); err != nil {
		uc.log.Warn().Err(err).Str("order_id", order.ID).Msg("no se pudo notificar la orden")
	}
	return &dto.PlaceOrderResponse{Order: *ToOrderResponse(order), PaymentIntent: intent}, nil
}

// create persiste la orden regenerando el número si el store reporta duplicado.
func (uc *OrderUseCase) create(ctx context.Context, order *entity.Order) error {
	var err error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = uc.numbers(order.CreatedAt)
		err = uc.orders.Create(ctx, order)
		if !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
		uc.log.Warn().Str("order_number", order.OrderNumber).Int("attempt", attempt).Msg("número de orden duplicado, regenerando")
	}
	return fmt.Errorf("no se pudo generar un número de orden único: %w", err)
}

// requestIntent crea el intent por el total guardado y lo asocia a la orden.
func (uc *OrderUseCase) requestIntent(ctx context.Context, order *entity.Order) (*dto.PaymentIntentRef, error) {
	if uc.gateway == nil {
		return nil, fmt.Errorf("%w: pasarela de pago no configurada", domain.ErrUpstream)
	}
	ref, err := uc.gateway.CreateIntent(ctx, order.Total, order.Currency, map[string]string{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"userId":      order.UserID,
	})
	if err != nil {
		return nil, upstream(err)
	}
	now := uc.now().UTC()
	if err := uc.orders.SetPaymentIntent(ctx, order.ID, ref.ID, now); err != nil {
		if order.PaymentIntentID != "" {
			// la orden sigue apuntando al intent anulado y el webhook descartaría los eventos del nuevo
			if cerr := uc.gateway.CancelIntent(ctx, ref.ID); cerr != nil {
				uc.log.Error().Err(cerr).Str("intent_id", ref.ID).Msg("no se pudo anular el intent sin registrar")
			}
			return nil, fmt.Errorf("guardar payment intent: %w", err)
		}
		// sin intent previo el webhook correlaciona por metadata.orderId y la orden sigue siendo cobrable
		uc.log.Warn().Err(err).Str("order_id", order.ID).Str("intent_id", ref.ID).Msg("no se pudo guardar el payment intent en la orden")
	} else {
		order.PaymentIntentID = ref.ID
		order.UpdatedAt = now
	}
	return &dto.PaymentIntentRef{ID: ref.ID, ClientSecret: ref.ClientSecret}, nil
}
