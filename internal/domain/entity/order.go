package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en el checkout.
const (
	PaymentMethodCreditCard   = "credit_card"
	PaymentMethodPayPal       = "paypal"
	PaymentMethodStripe       = "stripe"
	PaymentMethodBankTransfer = "bank_transfer"
)

// IsValidPaymentMethod valida el método de pago.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodStripe, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// OrderItem línea de la orden. Es una foto del producto al momento de comprar, no se re-lee del catálogo.
type OrderItem struct {
	ProductID         string          `json:"productId"`
	ExternalVariantID string          `json:"externalVariantId,omitempty"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	Image             string          `json:"image,omitempty"`
}

// LineTotal precio por cantidad.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order pedido. Items y totales son inmutables después de creada;
// Status y PaymentStatus evolucionan por separado.
type Order struct {
	ID              string
	OrderNumber     string
	UserID          string
	Items           []OrderItem
	ShippingAddress Address
	BillingAddress  Address
	PaymentMethod   string
	Currency        string
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Shipping        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	ExternalOrderID string // id de la orden espejo en Shopify, si existe
	TrackingNumber  string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BelongsTo indica si la orden es del usuario.
func (o *Order) BelongsTo(userID string) bool {
	return o.UserID == userID
}

// ItemCount total de unidades.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
