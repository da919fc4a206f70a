package ordering

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/pkg/money"
)

// PricingPolicy impuesto y envío del checkout.
type PricingPolicy struct {
	TaxRate  decimal.Decimal
	Shipping decimal.Decimal
}

// NewPricingPolicy construye la política desde la configuración (ej. 0.10 y 10).
func NewPricingPolicy(taxRate, shippingFlat float64) PricingPolicy {
	return PricingPolicy{
		TaxRate:  decimal.NewFromFloat(taxRate),
		Shipping: money.Round(decimal.NewFromFloat(shippingFlat)),
	}
}

// Totals montos de la orden, cada uno redondeado a centavos (half-up).
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Compute calcula los totales con los precios congelados del carrito.
// Total se suma desde los componentes ya redondeados, así total == subtotal + tax + shipping - discount exacto.
func (p PricingPolicy) Compute(cart *entity.Cart) Totals {
	subtotal := money.Round(cart.Total())
	tax := money.Round(subtotal.Mul(p.TaxRate))
	shipping := money.Round(p.Shipping)
	discount := decimal.Zero
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount),
	}
}
