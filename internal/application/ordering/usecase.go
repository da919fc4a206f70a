package ordering

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/storefront-api/internal/application/ordering")

// Deps dependencias del orquestador de órdenes. Mirror, Notifier, Receipts, Metrics y Log son opcionales.
type Deps struct {
	Orders   repository.OrderRepository
	Users    repository.UserRepository
	Gateway  ports.PaymentGateway
	Mirror   ports.OrderMirror
	Notifier ports.Notifier
	Receipts ports.ReceiptGenerator
	Metrics  ports.Recorder
	Log      *logger.Logger
}

// Config política del checkout.
type Config struct {
	Pricing  PricingPolicy
	Currency string
}

// OrderUseCase orquesta el ciclo de vida de la orden: checkout, despacho, consultas y reembolsos.
// El estado de pago lo mueve solo el webhook de la pasarela (ver package payment).
type OrderUseCase struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	gateway  ports.PaymentGateway
	mirror   ports.OrderMirror
	notifier ports.Notifier
	receipts ports.ReceiptGenerator
	metrics  ports.Recorder
	log      *logger.Logger
	cfg      Config
	numbers  NumberGenerator
	now      func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(deps Deps, cfg Config) *OrderUseCase {
	if deps.Notifier == nil {
		deps.Notifier = ports.NopNotifier{}
	}
	if deps.Metrics == nil {
		deps.Metrics = ports.NopRecorder{}
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &OrderUseCase{
		orders:   deps.Orders,
		users:    deps.Users,
		gateway:  deps.Gateway,
		mirror:   deps.Mirror,
		notifier: deps.Notifier,
		receipts: deps.Receipts,
		metrics:  deps.Metrics,
		log:      deps.Log.Named("orders"),
		cfg:      cfg,
		numbers:  NewOrderNumber,
		now:      time.Now,
	}
}

// load busca la orden y aplica visibilidad: un cliente solo ve las suyas; para los demás
// la orden "no existe".
func (uc *OrderUseCase) load(ctx context.Context, userID, orderID string, isAdmin bool) (*entity.Order, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || (!isAdmin && !order.BelongsTo(userID)) {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// ToOrderResponse mapea la entidad a la respuesta HTTP.
func ToOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:         it.ProductID,
			ExternalVariantID: it.ExternalVariantID,
			Title:             it.Title,
			Price:             it.Price,
			Quantity:          it.Quantity,
			Image:             it.Image,
		})
	}
	return &dto.OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: dto.AddressFromEntity(o.ShippingAddress),
		BillingAddress:  dto.AddressFromEntity(o.BillingAddress),
		PaymentMethod:   o.PaymentMethod,
		Currency:        o.Currency,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Shipping:        o.Shipping,
		Discount:        o.Discount,
		Total:           o.Total,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentIntentID: o.PaymentIntentID,
		ExternalOrderID: o.ExternalOrderID,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
