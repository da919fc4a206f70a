package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/storefront-api/internal/application/payment")

// Motivos de un evento reconocido pero no aplicado.
const (
	ReasonDuplicate         = "duplicate_event"
	ReasonUnknownKind       = "unknown_kind"
	ReasonMissingEventID    = "missing_event_id"
	ReasonNoCorrelation     = "missing_correlation_id"
	ReasonOrderNotFound     = "order_not_found"
	ReasonAlreadyApplied    = "already_applied"
	ReasonTransitionBlocked = "transition_not_allowed"
	ReasonConcurrentChange  = "concurrent_change"
	ReasonStaleIntent       = "stale_intent"
)

const maxCASAttempts = 3

// errEventRecorded otra entrega del mismo evento ganó la carrera; se hace rollback y se responde como duplicado.
var errEventRecorded = errors.New("evento ya registrado")

// WebhookUseCase procesa eventos de la pasarela. Es el único que mueve PaymentStatus.
// Toda respuesta que no sea firma inválida es un ack (200): la pasarela no debe reintentar
// condiciones que un reintento no arregla.
type WebhookUseCase struct {
	gateway  ports.PaymentGateway
	orders   repository.OrderRepository
	events   repository.PaymentEventRepository
	tx       TxRunner
	notifier ports.Notifier
	metrics  ports.Recorder
	log      *logger.Logger
	now      func() time.Time
}

// NewWebhookUseCase construye el caso de uso. notifier, metrics y log pueden ser nil.
func NewWebhookUseCase(
	gateway ports.PaymentGateway,
	orders repository.OrderRepository,
	events repository.PaymentEventRepository,
	tx TxRunner,
	notifier ports.Notifier,
	metrics ports.Recorder,
	log *logger.Logger,
) *WebhookUseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &WebhookUseCase{
		gateway: gateway, orders: orders, events: events, tx: tx,
		notifier: notifier, metrics: metrics, log: log.Named("payment_webhook"), now: time.Now,
	}
}

// target estado de pago (y opcionalmente de orden) que produce cada tipo de evento.
type target struct {
	payment entity.PaymentStatus
	order   *entity.OrderStatus
}

func targetFor(kind string) (target, bool) {
	switch kind {
	case entity.EventIntentSucceeded:
		return target{payment: entity.PaymentCompleted}, true
	case entity.EventIntentFailed:
		return target{payment: entity.PaymentFailed}, true
	case entity.EventChargeRefunded:
		refunded := entity.OrderRefunded
		return target{payment: entity.PaymentRefunded, order: &refunded}, true
	}
	return target{}, false
}

// HandleEvent verifica la firma antes de cualquier otra cosa; sin firma válida no se toca el store.
// Eventos repetidos, desconocidos o sin orden se reconocen sin aplicar.
func (uc *WebhookUseCase) HandleEvent(ctx context.Context, payload []byte, signature string) (*dto.WebhookAck, error) {
	ctx, span := tracer.Start(ctx, "payments.HandleEvent")
	defer span.End()

	if uc.gateway == nil {
		return nil, fmt.Errorf("%w: pasarela de pago no configurada", domain.ErrInvalidSignature)
	}
	ev, err := uc.gateway.ParseEvent(payload, signature)
	if err != nil {
		uc.metrics.WebhookEvent("unknown", "invalid_signature")
		span.SetStatus(codes.Error, "invalid signature")
		if !errors.Is(err, domain.ErrInvalidSignature) {
			err = fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("event.id", ev.ID), attribute.String("event.kind", ev.Kind))
	log := uc.log.With().Str("event_id", ev.ID).Str("kind", ev.Kind).Str("order_id", ev.OrderID).Logger()

	ack := &dto.WebhookAck{Received: true, EventID: ev.ID, Kind: ev.Kind}
	if ev.ID == "" {
		return uc.ignore(ack, ReasonMissingEventID), nil
	}
	seen, err := uc.events.Seen(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	if seen {
		return uc.ignore(ack, ReasonDuplicate), nil
	}

	tgt, known := targetFor(ev.Kind)
	if !known {
		log.Debug().Str("raw_type", ev.RawType).Msg("tipo de evento ignorado")
		return uc.record(ctx, ack, ev, "", ReasonUnknownKind)
	}

	var applied *entity.Order
	reason := ""
	err = uc.tx.RunPayment(ctx, func(orders repository.OrderRepository, events repository.PaymentEventRepository) error {
		order, err := uc.correlate(ctx, orders, ev)
		if err != nil {
			return err
		}
		if order == nil {
			reason = ReasonNoCorrelation
			if ev.OrderID != "" || ev.IntentID != "" {
				reason = ReasonOrderNotFound
			}
		} else if stale(order, ev) {
			reason = ReasonStaleIntent
		} else {
			applied, reason, err = uc.apply(ctx, orders, order, tgt)
			if err != nil {
				return err
			}
		}
		outcome := entity.EventOutcomeApplied
		if applied == nil {
			outcome = entity.EventOutcomeIgnored
		}
		orderID := ev.OrderID
		if order != nil {
			orderID = order.ID
		}
		err = events.Record(ctx, &entity.PaymentEvent{
			ID: ev.ID, Kind: ev.Kind, OrderID: orderID, Outcome: outcome, Reason: reason, ProcessedAt: uc.now().UTC(),
		})
		if errors.Is(err, domain.ErrDuplicate) {
			return errEventRecorded
		}
		return err
	})
	if errors.Is(err, errEventRecorded) {
		return uc.ignore(ack, ReasonDuplicate), nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply event")
		return nil, err
	}

	if applied == nil {
		switch reason {
		case ReasonOrderNotFound, ReasonNoCorrelation, ReasonTransitionBlocked, ReasonConcurrentChange, ReasonStaleIntent:
			log.Warn().Str("reason", reason).Str("intent_id", ev.IntentID).Msg("evento de pago descartado")
		}
		return uc.ignore(ack, reason), nil
	}

	ack.Applied = true
	uc.metrics.WebhookEvent(ev.Kind, "applied")
	log.Info().Str("payment_status", string(applied.PaymentStatus)).Str("status", string(applied.Status)).Msg("evento de pago aplicado")
	if err := uc.notifier.PaymentUpdated(ctx, applied, ev.Kind); err != nil {
		log.Warn().Err(err).Msg("no se pudo notificar el cambio de pago")
	}
	return ack, nil
}

// correlate resuelve la orden por metadata.orderId y, si no viene, por el id del intent.
func (uc *WebhookUseCase) correlate(ctx context.Context, orders repository.OrderRepository, ev *ports.GatewayEvent) (*entity.Order, error) {
	if ev.OrderID != "" {
		return orders.GetByID(ctx, ev.OrderID)
	}
	if ev.IntentID != "" {
		return orders.GetByPaymentIntentID(ctx, ev.IntentID)
	}
	return nil, nil
}

// stale el evento pertenece a un intent que ya no es el vigente de la orden (reemplazado por un reintento).
func stale(order *entity.Order, ev *ports.GatewayEvent) bool {
	return ev.IntentID != "" && order.PaymentIntentID != "" && ev.IntentID != order.PaymentIntentID
}

// apply mueve el estado con compare-and-set. Devuelve la orden actualizada o el motivo por el que no se aplicó.
func (uc *WebhookUseCase) apply(ctx context.Context, orders repository.OrderRepository, order *entity.Order, tgt target) (*entity.Order, string, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		from := order.PaymentStatus
		if from == tgt.payment {
			return nil, ReasonAlreadyApplied, nil
		}
		if !from.CanTransitionTo(tgt.payment) {
			return nil, ReasonTransitionBlocked, nil
		}
		now := uc.now().UTC()
		ok, err := orders.UpdatePaymentStatus(ctx, order.ID, repository.PaymentChange{
			From: from, To: tgt.payment, Status: tgt.order, At: now,
		})
		if err != nil {
			return nil, "", err
		}
		if ok {
			order.PaymentStatus = tgt.payment
			if tgt.order != nil {
				order.Status = *tgt.order
			}
			order.UpdatedAt = now
			return order, "", nil
		}
		reloaded, err := orders.GetByID(ctx, order.ID)
		if err != nil {
			return nil, "", err
		}
		if reloaded == nil {
			return nil, ReasonOrderNotFound, nil
		}
		order = reloaded
	}
	return nil, ReasonConcurrentChange, nil
}

// record registra un evento ignorado (para deduplicar reentregas) y responde ack.
func (uc *WebhookUseCase) record(ctx context.Context, ack *dto.WebhookAck, ev *ports.GatewayEvent, orderID, reason string) (*dto.WebhookAck, error) {
	err := uc.events.Record(ctx, &entity.PaymentEvent{
		ID: ev.ID, Kind: ev.Kind, OrderID: orderID, Outcome: entity.EventOutcomeIgnored, Reason: reason, ProcessedAt: uc.now().UTC(),
	})
	if err != nil && !errors.Is(err, domain.ErrDuplicate) {
		return nil, err
	}
	return uc.ignore(ack, reason), nil
}

func (uc *WebhookUseCase) ignore(ack *dto.WebhookAck, reason string) *dto.WebhookAck {
	kind := ack.Kind
	if _, known := targetFor(kind); !known {
		kind = "other"
	}
	uc.metrics.WebhookEvent(kind, reason)
	ack.Ignored = true
	ack.Reason = reason
	return ack
}
