// Package money concentra la regla de redondeo de importes: dos decimales, mitad hacia arriba.
// Los totales de la orden y el monto enviado a la pasarela usan la misma regla.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale decimales de la moneda (centavos).
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Round redondea a centavos, mitad alejándose de cero (half-up para montos positivos).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// ToMinorUnits convierte a la unidad mínima entera (centavos): 10.005 -> 1001.
func ToMinorUnits(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("money: monto negativo %s", d.String())
	}
	cents := Round(d).Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("money: conversión inexacta %s", d.String())
	}
	return cents.IntPart(), nil
}

// FromMinorUnits convierte centavos a monto decimal.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -Scale)
}

// Format monto con dos decimales y código de moneda: "230.00 USD".
func Format(d decimal.Decimal, currency string) string {
	return Round(d).StringFixed(Scale) + " " + strings.ToUpper(currency)
}
