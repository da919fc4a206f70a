package ordering

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/internal/infrastructure/memory"
)

type fakeGateway struct {
	mu        sync.Mutex
	fail      error
	intents   int
	metadata  []map[string]string
	amounts   []decimal.Decimal
	refunds   []*decimal.Decimal
	statuses  map[string]string
	cancelled []string
}

// setStatus fija el estado que la pasarela reporta para un intent.
func (g *fakeGateway) setStatus(id, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statuses == nil {
		g.statuses = map[string]string{}
	}
	g.statuses[id] = status
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount decimal.Decimal, _ string, metadata map[string]string) (*ports.IntentRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return nil, g.fail
	}
	g.intents++
	g.metadata = append(g.metadata, metadata)
	g.amounts = append(g.amounts, amount)
	id := fmt.Sprintf("pi_%d", g.intents)
	return &ports.IntentRef{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*ports.IntentDetails, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.statuses[id]
	if !ok {
		status = "requires_payment_method"
	}
	return &ports.IntentDetails{ID: id, Status: status, Amount: decimal.NewFromInt(230), Currency: "usd"}, nil
}

func (g *fakeGateway) CancelIntent(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.cancelled = append(g.cancelled, id)
	if g.statuses == nil {
		g.statuses = map[string]string{}
	}
	g.statuses[id] = ports.IntentStatusCanceled
	return nil
}

func (g *fakeGateway) Refund(_ context.Context, _ string, amount *decimal.Decimal) (*ports.RefundRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return nil, g.fail
	}
	g.refunds = append(g.refunds, amount)
	out := &ports.RefundRef{ID: "re_1", Status: "pending"}
	if amount != nil {
		out.Amount = *amount
	}
	return out, nil
}

func (g *fakeGateway) ParseEvent([]byte, string) (*ports.GatewayEvent, error) {
	return nil, domain.ErrInvalidSignature
}

type fakeMirror struct {
	err   error
	calls []string
}

func (m *fakeMirror) UpdateFulfillment(_ context.Context, externalOrderID, status, tracking string) error {
	m.calls = append(m.calls, externalOrderID+":"+status+":"+tracking)
	return m.err
}

type fakeReceipts struct{}

func (fakeReceipts) Generate(order *entity.Order, customer *entity.User) ([]byte, error) {
	return []byte("%PDF " + order.OrderNumber + " " + customer.Email), nil
}

type env struct {
	uc      *OrderUseCase
	orders  *memory.OrderRepository
	users   *memory.UserRepository
	gateway *fakeGateway
	mirror  *fakeMirror
}

func newEnv(t *testing.T) *env {
	t.Helper()
	orders := memory.NewOrderRepository()
	users := memory.NewUserRepository()
	gw := &fakeGateway{}
	mirror := &fakeMirror{}
	uc := NewOrderUseCase(Deps{
		Orders: orders, Users: users, Gateway: gw, Mirror: mirror, Receipts: fakeReceipts{},
	}, Config{Pricing: NewPricingPolicy(0.10, 10)})
	require.NoError(t, users.Create(context.Background(), &entity.User{ID: "u1", Email: "ana@example.com", Role: entity.RoleCustomer, IsActive: true}))
	return &env{uc: uc, orders: orders, users: users, gateway: gw, mirror: mirror}
}

func checkout() dto.PlaceOrderRequest {
	return dto.PlaceOrderRequest{
		Items: []dto.OrderItemRequest{
			{ProductID: "p1", Title: "Camiseta", Price: decimal.NewFromInt(100), Quantity: 2},
		},
		ShippingAddress: dto.AddressDTO{Street: "Calle 1", City: "Bogotá", Country: "CO"},
		PaymentMethod:   "stripe",
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPlaceOrder_CalculaTotalesYCreaIntent(t *testing.T) {
	e := newEnv(t)
	out, err := e.uc.PlaceOrder(context.Background(), "u1", checkout())
	require.NoError(t, err)

	o := out.Order
	assert.True(t, dec("200.00").Equal(o.Subtotal))
	assert.True(t, dec("20.00").Equal(o.Tax))
	assert.True(t, dec("10.00").Equal(o.Shipping))
	assert.True(t, dec("230.00").Equal(o.Total))
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, "pending", o.PaymentStatus)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{12}$`, o.OrderNumber)
	assert.Equal(t, "billing", o.BillingAddress.Type)
	assert.Equal(t, "Calle 1", o.BillingAddress.Street, "sin billing se usa la de envío")

	require.NotNil(t, out.PaymentIntent)
	assert.Equal(t, "pi_1", out.PaymentIntent.ID)
	assert.Equal(t, o.ID, e.gateway.metadata[0]["orderId"])
	assert.True(t, dec("230").Equal(e.gateway.amounts[0]))

	stored, _ := e.orders.GetByID(context.Background(), o.ID)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
}

func TestPlaceOrder_RechazaEntradaInvalida(t *testing.T) {
	e := newEnv(t)
	cases := map[string]func(r *dto.PlaceOrderRequest){
		"sin items":       func(r *dto.PlaceOrderRequest) { r.Items = nil },
		"cantidad cero":   func(r *dto.PlaceOrderRequest) { r.Items[0].Quantity = 0 },
		"sin dirección":   func(r *dto.PlaceOrderRequest) { r.ShippingAddress = dto.AddressDTO{} },
		"método inválido": func(r *dto.PlaceOrderRequest) { r.PaymentMethod = "cash" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := checkout()
			mutate(&req)
			_, err := e.uc.PlaceOrder(context.Background(), "u1", req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	n, _ := e.orders.Count(context.Background(), "")
	assert.Zero(t, n)
}

func TestPlaceOrder_FalloDePasarelaDejaOrdenPendiente(t *testing.T) {
	e := newEnv(t)
	e.gateway.fail = errors.New("timeout")

	out, err := e.uc.PlaceOrder(context.Background(), "u1", checkout())
	assert.ErrorIs(t, err, domain.ErrUpstream)
	require.NotNil(t, out)
	assert.NotEmpty(t, out.PaymentError)
	assert.Nil(t, out.PaymentIntent)

	stored, _ := e.orders.GetByID(context.Background(), out.Order.ID)
	require.NotNil(t, stored)
	assert.Equal(t, entity.OrderPending, stored.Status)
	assert.Equal(t, entity.PaymentPending, stored.PaymentStatus)

	// el reintento crea el intent sobre la misma orden
	e.gateway.fail = nil
	ref, err := e.uc.RetryPayment(context.Background(), "u1", out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", ref.ID)
}

func TestRetryPayment_AnulaElIntentAnterior(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := placed(t, e)

	ref, err := e.uc.RetryPayment(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "pi_2", ref.ID)
	assert.Equal(t, []string{"pi_1"}, e.gateway.cancelled)

	stored, _ := e.orders.GetByID(ctx, id)
	assert.Equal(t, "pi_2", stored.PaymentIntentID)
}

func TestRetryPayment_IntentAnteriorCobradoSeRechaza(t *testing.T) {
	for _, status := range []string{ports.IntentStatusSucceeded, ports.IntentStatusProcessing} {
		t.Run(status, func(t *testing.T) {
			e := newEnv(t)
			ctx := context.Background()
			id := placed(t, e)
			e.gateway.setStatus("pi_1", status)

			_, err := e.uc.RetryPayment(ctx, "u1", id)
			assert.ErrorIs(t, err, domain.ErrConflict)
			assert.Empty(t, e.gateway.cancelled)
			assert.Equal(t, 1, e.gateway.intents, "no se emite un segundo intent cobrable")

			stored, _ := e.orders.GetByID(ctx, id)
			assert.Equal(t, "pi_1", stored.PaymentIntentID)
		})
	}
}

func TestRetryPayment_IntentAnteriorYaAnulado(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := placed(t, e)
	e.gateway.setStatus("pi_1", ports.IntentStatusCanceled)

	ref, err := e.uc.RetryPayment(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "pi_2", ref.ID)
	assert.Empty(t, e.gateway.cancelled)
}

func TestRetryPayment_FalloAlAnularNoCreaIntent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := placed(t, e)
	e.gateway.fail = errors.New("timeout")

	_, err := e.uc.RetryPayment(ctx, "u1", id)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, 1, e.gateway.intents)
}

func TestPlaceOrder_NumerosUnicosConcurrentes(t *testing.T) {
	e := newEnv(t)
	const n = 50
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := e.uc.PlaceOrder(context.Background(), "u1", checkout())
			if assert.NoError(t, err) {
				numbers <- out.Order.OrderNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "número repetido %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

func TestPlaceOrder_RegeneraNumeroDuplicado(t *testing.T) {
	e := newEnv(t)
	calls := 0
	e.uc.numbers = func(time.Time) string {
		calls++
		if calls <= 2 {
			return "ORD-20260101-000000000001"
		}
		return fmt.Sprintf("ORD-20260101-%012d", calls)
	}
	first, err := e.uc.PlaceOrder(context.Background(), "u1", checkout())
	require.NoError(t, err)
	second, err := e.uc.PlaceOrder(context.Background(), "u1", checkout())
	require.NoError(t, err)
	assert.NotEqual(t, first.Order.OrderNumber, second.Order.OrderNumber)
	assert.Equal(t, 3, calls)
}

func placed(t *testing.T, e *env) string {
	t.Helper()
	out, err := e.uc.PlaceOrder(context.Background(), "u1", checkout())
	require.NoError(t, err)
	return out.Order.ID
}

func TestUpdateFulfillment_MaquinaDeEstados(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := placed(t, e)

	out, err := e.uc.UpdateFulfillment(ctx, id, dto.UpdateFulfillmentRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", out.Order.Status)

	tracking := "TRK-1"
	_, err = e.uc.UpdateFulfillment(ctx, id, dto.UpdateFulfillmentRequest{Status: "shipped", TrackingNumber: &tracking})
	require.NoError(t, err)
	out, err = e.uc.UpdateFulfillment(ctx, id, dto.UpdateFulfillmentRequest{Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", out.Order.TrackingNumber)

	_, err = e.uc.UpdateFulfillment(ctx, id, dto.UpdateFulfillmentRequest{Status: "pending"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, _ := e.orders.GetByID(ctx, id)
	assert.Equal(t, entity.OrderDelivered, stored.Status)
	assert.Equal(t, entity.PaymentPending, stored.PaymentStatus, "el despacho no toca el pago")
}

func TestUpdateFulfillment_Cancelar(t *testing.T) {
	e := newEnv(t)
	id := placed(t, e)
	out, err := e.uc.UpdateFulfillment(context.Background(), id, dto.UpdateFulfillmentRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.Order.Status)

	_, err = e.uc.UpdateFulfillment(context.Background(), id, dto.UpdateFulfillmentRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = e.uc.UpdateFulfillment(context.Background(), "no-existe", dto.UpdateFulfillmentRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateFulfillment_ErrorDelEspejoNoRevierte(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.orders.Create(ctx, &entity.Order{
		ID: "o-ext", OrderNumber: "ORD-20260101-EEEEEEEEEEEE", UserID: "u1", ExternalOrderID: "shop-9",
		Status: entity.OrderPending, PaymentStatus: entity.PaymentPending, Total: decimal.NewFromInt(10),
	}))
	e.mirror.err = errors.New("shopify 503")

	out, err := e.uc.UpdateFulfillment(ctx, "o-ext", dto.UpdateFulfillmentRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.False(t, out.MirrorSynced)
	assert.Contains(t, out.MirrorError, "503")
	assert.Equal(t, []string{"shop-9:confirmed:"}, e.mirror.calls)

	stored, _ := e.orders.GetByID(ctx, "o-ext")
	assert.Equal(t, entity.OrderConfirmed, stored.Status)
}

func TestGetOrder_Visibilidad(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := placed(t, e)

	_, err := e.uc.GetOrder(ctx, "u1", id, false)
	assert.NoError(t, err)
	_, err = e.uc.GetOrder(ctx, "otro", id, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.uc.GetOrder(ctx, "admin", id, true)
	assert.NoError(t, err)
}

func TestListMyOrders_PaginaPorDefecto(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 12; i++ {
		placed(t, e)
	}
	out, err := e.uc.ListMyOrders(context.Background(), "u1", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Orders, 10)
	assert.Equal(t, dto.Pagination{Page: 1, Limit: 10, Total: 12, Pages: 2}, out.Pagination)

	other, err := e.uc.ListMyOrders(context.Background(), "otro", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, other.Orders)

	_, err = e.uc.ListAllOrders(context.Background(), dto.ListOrdersQuery{Status: "perdida"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRequestRefund_Precondiciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := placed(t, e)

	_, err := e.uc.RequestRefund(ctx, id, dto.RefundRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict, "pago aún pendiente")

	_, err = e.orders.UpdatePaymentStatus(ctx, id, paymentChange(entity.PaymentPending, entity.PaymentCompleted))
	require.NoError(t, err)

	tooMuch := decimal.NewFromInt(1000)
	_, err = e.uc.RequestRefund(ctx, id, dto.RefundRequest{Amount: &tooMuch})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	partial := decimal.NewFromInt(50)
	out, err := e.uc.RequestRefund(ctx, id, dto.RefundRequest{Amount: &partial, Reason: "requested_by_customer"})
	require.NoError(t, err)
	assert.Equal(t, "re_1", out.RefundID)

	stored, _ := e.orders.GetByID(ctx, id)
	assert.Equal(t, entity.PaymentCompleted, stored.PaymentStatus, "el estado cambia con el evento de la pasarela")

	_, err = e.uc.RetryPayment(ctx, "u1", id)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPaymentDetailsYReceipt(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := placed(t, e)

	e.gateway.setStatus("pi_1", ports.IntentStatusSucceeded)
	details, err := e.uc.PaymentDetails(ctx, "u1", id, false)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", details.GatewayStatus)
	assert.Equal(t, "pending", details.PaymentStatus)

	pdf, name, err := e.uc.Receipt(ctx, "u1", id, false)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), "ana@example.com")
	assert.Regexp(t, `^ORD-.*\.pdf$`, name)

	_, _, err = e.uc.Receipt(ctx, "otro", id, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func paymentChange(from, to entity.PaymentStatus) repository.PaymentChange {
	return repository.PaymentChange{From: from, To: to, At: time.Now()}
}
