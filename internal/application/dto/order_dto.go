package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea pedida. El precio es el que vio el cliente y queda congelado.
type OrderItemRequest struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// PlaceOrderRequest entrada del checkout.
type PlaceOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress AddressDTO         `json:"shippingAddress"`
	BillingAddress  *AddressDTO        `json:"billingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	Notes           string             `json:"notes"`
}

// Validate revisa forma; la regla de precios y cantidades vive en el carrito.
func (r PlaceOrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return invalid("items no puede ser vacío")
	}
	for i, it := range r.Items {
		if it.ProductID == "" {
			return invalid("items[%d].productId es requerido", i)
		}
		if it.Quantity <= 0 {
			return invalid("items[%d].quantity debe ser mayor a 0", i)
		}
		if !it.Price.IsPositive() {
			return invalid("items[%d].price debe ser mayor a 0", i)
		}
	}
	if err := r.ShippingAddress.Validate("shippingAddress"); err != nil {
		return err
	}
	if r.BillingAddress != nil {
		if err := r.BillingAddress.Validate("billingAddress"); err != nil {
			return err
		}
	}
	switch r.PaymentMethod {
	case "credit_card", "paypal", "stripe", "bank_transfer":
	default:
		return invalid("paymentMethod inválido: %q", r.PaymentMethod)
	}
	return nil
}

// OrderItemResponse línea de orden.
type OrderItemResponse struct {
	ProductID         string          `json:"productId"`
	ExternalVariantID string          `json:"externalVariantId,omitempty"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	Image             string          `json:"image,omitempty"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	UserID          string              `json:"userId"`
	Items           []OrderItemResponse `json:"items"`
	ShippingAddress AddressDTO          `json:"shippingAddress"`
	BillingAddress  AddressDTO          `json:"billingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	Currency        string              `json:"currency"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	Shipping        decimal.Decimal     `json:"shipping"`
	Discount        decimal.Decimal     `json:"discount"`
	Total           decimal.Decimal     `json:"total"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	PaymentIntentID string              `json:"paymentIntentId,omitempty"`
	ExternalOrderID string              `json:"externalOrderId,omitempty"`
	TrackingNumber  string              `json:"trackingNumber,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// PaymentIntentRef referencia al intent para el cliente (clientSecret lo usa Stripe.js).
type PaymentIntentRef struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
}

// PlaceOrderResponse orden creada + intent. PaymentError se llena cuando la orden quedó
// persistida pero la pasarela falló; el cliente puede reintentar con POST /orders/:id/payment.
type PlaceOrderResponse struct {
	Order         OrderResponse     `json:"order"`
	PaymentIntent *PaymentIntentRef `json:"paymentIntent,omitempty"`
	PaymentError  string            `json:"paymentError,omitempty"`
}

// OrderListResponse página de órdenes.
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Pagination Pagination      `json:"pagination"`
}

// ListOrdersQuery filtros del listado admin.
type ListOrdersQuery struct {
	PageRequest
	Status string `query:"status"`
}

// UpdateFulfillmentRequest cambio de estado de despacho (admin).
type UpdateFulfillmentRequest struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"trackingNumber"`
}

// Validate status es requerido; la transición la valida el caso de uso.
func (r UpdateFulfillmentRequest) Validate() error {
	if r.Status == "" {
		return invalid("status es requerido")
	}
	return nil
}

// UpdateFulfillmentResponse orden actualizada + resultado del espejo externo.
type UpdateFulfillmentResponse struct {
	Order        OrderResponse `json:"order"`
	MirrorSynced bool          `json:"mirrorSynced"`
	MirrorError  string        `json:"mirrorError,omitempty"`
}

// RefundRequest reembolso total (amount nil) o parcial.
type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason"`
}

// Validate amount positivo si viene.
func (r RefundRequest) Validate() error {
	if r.Amount != nil && !r.Amount.IsPositive() {
		return invalid("amount debe ser mayor a 0")
	}
	return nil
}

// RefundResponse resultado de pedir el reembolso a la pasarela.
type RefundResponse struct {
	RefundID string          `json:"refundId"`
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Message  string          `json:"message"`
}

// PaymentDetailsResponse estado del intent según la pasarela (solo lectura).
type PaymentDetailsResponse struct {
	OrderID         string          `json:"orderId"`
	PaymentIntentID string          `json:"paymentIntentId"`
	GatewayStatus   string          `json:"gatewayStatus"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentStatus   string          `json:"paymentStatus"`
}
