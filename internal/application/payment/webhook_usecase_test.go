package payment_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/application/payment"
	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/infrastructure/memory"
)

const goodSig = "firma-valida"

// fakeGateway acepta como payload un GatewayEvent en JSON y solo la firma goodSig.
type fakeGateway struct{}

func (fakeGateway) CreateIntent(context.Context, decimal.Decimal, string, map[string]string) (*ports.IntentRef, error) {
	return nil, nil
}
func (fakeGateway) GetIntent(context.Context, string) (*ports.IntentDetails, error) { return nil, nil }
func (fakeGateway) CancelIntent(context.Context, string) error                      { return nil }
func (fakeGateway) Refund(context.Context, string, *decimal.Decimal) (*ports.RefundRef, error) {
	return nil, nil
}

func (fakeGateway) ParseEvent(payload []byte, signature string) (*ports.GatewayEvent, error) {
	if signature != goodSig {
		return nil, domain.ErrInvalidSignature
	}
	var ev ports.GatewayEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (n *recordingNotifier) OrderPlaced(context.Context, *entity.Order) error { return nil }

func (n *recordingNotifier) PaymentUpdated(_ context.Context, _ *entity.Order, kind string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	return nil
}

type fixture struct {
	uc       *payment.WebhookUseCase
	orders   *memory.OrderRepository
	events   *memory.PaymentEventRepository
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orders := memory.NewOrderRepository()
	events := memory.NewPaymentEventRepository()
	n := &recordingNotifier{}
	uc := payment.NewWebhookUseCase(fakeGateway{}, orders, events, memory.NewTxRunner(orders, events), n, nil, nil)
	require.NoError(t, orders.Create(context.Background(), &entity.Order{
		ID: "o1", OrderNumber: "ORD-20260101-AAAAAAAAAAAA", UserID: "u1",
		Total: decimal.NewFromInt(230), Status: entity.OrderPending, PaymentStatus: entity.PaymentPending,
		PaymentIntentID: "pi_1", CreatedAt: time.Now(),
	}))
	return &fixture{uc: uc, orders: orders, events: events, notifier: n}
}

func payload(t *testing.T, ev ports.GatewayEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func (f *fixture) order(t *testing.T) *entity.Order {
	t.Helper()
	o, err := f.orders.GetByID(context.Background(), "o1")
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}

func TestHandleEvent_FirmaInvalidaNoMuta(t *testing.T) {
	f := newFixture(t)
	body := payload(t, ports.GatewayEvent{ID: "evt_1", Kind: entity.EventIntentSucceeded, OrderID: "o1"})

	ack, err := f.uc.HandleEvent(context.Background(), body, "falsa")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.Nil(t, ack)

	assert.Equal(t, entity.PaymentPending, f.order(t).PaymentStatus)
	_, recorded := f.events.Get("evt_1")
	assert.False(t, recorded)
}

func TestHandleEvent_PagoExitosoEsIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := payload(t, ports.GatewayEvent{ID: "evt_1", Kind: entity.EventIntentSucceeded, IntentID: "pi_1", OrderID: "o1"})

	ack, err := f.uc.HandleEvent(ctx, body, goodSig)
	require.NoError(t, err)
	assert.True(t, ack.Applied)
	assert.Equal(t, entity.PaymentCompleted, f.order(t).PaymentStatus)
	assert.Equal(t, entity.OrderPending, f.order(t).Status, "el pago no mueve el fulfillment")

	again, err := f.uc.HandleEvent(ctx, body, goodSig)
	require.NoError(t, err)
	assert.False(t, again.Applied)
	assert.True(t, again.Ignored)
	assert.Equal(t, payment.ReasonDuplicate, again.Reason)
	assert.Equal(t, entity.PaymentCompleted, f.order(t).PaymentStatus)
	assert.Equal(t, []string{entity.EventIntentSucceeded}, f.notifier.kinds)

	ev, ok := f.events.Get("evt_1")
	require.True(t, ok)
	assert.Equal(t, entity.EventOutcomeApplied, ev.Outcome)
	assert.Equal(t, "o1", ev.OrderID)
}

func TestHandleEvent_EntregasConcurrentesAplicanUnaVez(t *testing.T) {
	f := newFixture(t)
	body := payload(t, ports.GatewayEvent{ID: "evt_1", Kind: entity.EventIntentSucceeded, OrderID: "o1"})

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ack, err := f.uc.HandleEvent(context.Background(), body, goodSig)
			if assert.NoError(t, err) && ack.Applied {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, applied)
	assert.Len(t, f.notifier.kinds, 1)
}

func TestHandleEvent_PagoFallido(t *testing.T) {
	f := newFixture(t)
	body := payload(t, ports.GatewayEvent{ID: "evt_f", Kind: entity.EventIntentFailed, OrderID: "o1"})

	ack, err := f.uc.HandleEvent(context.Background(), body, goodSig)
	require.NoError(t, err)
	assert.True(t, ack.Applied)
	assert.Equal(t, entity.PaymentFailed, f.order(t).PaymentStatus)

	// un éxito tardío no revive un pago fallido
	late := payload(t, ports.GatewayEvent{ID: "evt_s", Kind: entity.EventIntentSucceeded, OrderID: "o1"})
	ack, err = f.uc.HandleEvent(context.Background(), late, goodSig)
	require.NoError(t, err)
	assert.Equal(t, payment.ReasonTransitionBlocked, ack.Reason)
	assert.Equal(t, entity.PaymentFailed, f.order(t).PaymentStatus)
}

func TestHandleEvent_ReembolsoCorrelacionaPorIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.HandleEvent(ctx, payload(t, ports.GatewayEvent{ID: "evt_1", Kind: entity.EventIntentSucceeded, OrderID: "o1"}), goodSig)
	require.NoError(t, err)

	// el cargo no trae metadata: se resuelve por el id del intent
	ack, err := f.uc.HandleEvent(ctx, payload(t, ports.GatewayEvent{ID: "evt_2", Kind: entity.EventChargeRefunded, IntentID: "pi_1"}), goodSig)
	require.NoError(t, err)
	assert.True(t, ack.Applied)

	o := f.order(t)
	assert.Equal(t, entity.PaymentRefunded, o.PaymentStatus)
	assert.Equal(t, entity.OrderRefunded, o.Status)
}

func TestHandleEvent_ReembolsoSinPagoCompletadoSeIgnora(t *testing.T) {
	f := newFixture(t)
	ack, err := f.uc.HandleEvent(context.Background(), payload(t, ports.GatewayEvent{ID: "evt_r", Kind: entity.EventChargeRefunded, OrderID: "o1"}), goodSig)
	require.NoError(t, err)
	assert.False(t, ack.Applied)
	assert.Equal(t, payment.ReasonTransitionBlocked, ack.Reason)
	assert.Equal(t, entity.PaymentPending, f.order(t).PaymentStatus)
}

func TestHandleEvent_TipoDesconocidoSeReconoce(t *testing.T) {
	f := newFixture(t)
	ack, err := f.uc.HandleEvent(context.Background(), payload(t, ports.GatewayEvent{ID: "evt_x", Kind: "customer.created", OrderID: "o1"}), goodSig)
	require.NoError(t, err)
	assert.True(t, ack.Received)
	assert.True(t, ack.Ignored)
	assert.Equal(t, payment.ReasonUnknownKind, ack.Reason)

	ev, ok := f.events.Get("evt_x")
	require.True(t, ok)
	assert.Equal(t, entity.EventOutcomeIgnored, ev.Outcome)
	assert.Equal(t, entity.PaymentPending, f.order(t).PaymentStatus)
}

func TestHandleEvent_OrdenInexistente(t *testing.T) {
	f := newFixture(t)
	ack, err := f.uc.HandleEvent(context.Background(), payload(t, ports.GatewayEvent{ID: "evt_1", Kind: entity.EventIntentSucceeded, OrderID: "no-existe"}), goodSig)
	require.NoError(t, err)
	assert.False(t, ack.Applied)
	assert.Equal(t, payment.ReasonOrderNotFound, ack.Reason)

	ack, err = f.uc.HandleEvent(context.Background(), payload(t, ports.GatewayEvent{ID: "evt_2", Kind: entity.EventIntentSucceeded}), goodSig)
	require.NoError(t, err)
	assert.Equal(t, payment.ReasonNoCorrelation, ack.Reason)
	assert.Empty(t, f.notifier.kinds)
}

func TestHandleEvent_SinIDDeEvento(t *testing.T) {
	f := newFixture(t)
	ack, err := f.uc.HandleEvent(context.Background(), payload(t, ports.GatewayEvent{Kind: entity.EventIntentSucceeded, OrderID: "o1"}), goodSig)
	require.NoError(t, err)
	assert.Equal(t, payment.ReasonMissingEventID, ack.Reason)
	assert.Equal(t, entity.PaymentPending, f.order(t).PaymentStatus)
}

func TestHandleEvent_IntentReemplazadoNoMuta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// un reintento dejó pi_2 como intent vigente
	require.NoError(t, f.orders.SetPaymentIntent(ctx, "o1", "pi_2", time.Now()))

	ack, err := f.uc.HandleEvent(ctx, payload(t, ports.GatewayEvent{ID: "evt_old", Kind: entity.EventIntentFailed, IntentID: "pi_1", OrderID: "o1"}), goodSig)
	require.NoError(t, err)
	assert.False(t, ack.Applied)
	assert.Equal(t, payment.ReasonStaleIntent, ack.Reason)
	assert.Equal(t, entity.PaymentPending, f.order(t).PaymentStatus)

	ev, ok := f.events.Get("evt_old")
	require.True(t, ok)
	assert.Equal(t, entity.EventOutcomeIgnored, ev.Outcome)

	ack, err = f.uc.HandleEvent(ctx, payload(t, ports.GatewayEvent{ID: "evt_new", Kind: entity.EventIntentSucceeded, IntentID: "pi_2", OrderID: "o1"}), goodSig)
	require.NoError(t, err)
	assert.True(t, ack.Applied)
	assert.Equal(t, entity.PaymentCompleted, f.order(t).PaymentStatus)

	// un segundo cobro sobre el intent viejo tampoco se da por aplicado
	ack, err = f.uc.HandleEvent(ctx, payload(t, ports.GatewayEvent{ID: "evt_old_ok", Kind: entity.EventIntentSucceeded, IntentID: "pi_1", OrderID: "o1"}), goodSig)
	require.NoError(t, err)
	assert.Equal(t, payment.ReasonStaleIntent, ack.Reason)
	assert.Equal(t, []string{entity.EventIntentSucceeded}, f.notifier.kinds)
}
