package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

func sampleOrder() *entity.Order {
	addr := entity.Address{FirstName: "Ana", LastName: "Pérez", Street: "Calle 1 # 2-3", City: "Bogotá", State: "DC", ZipCode: "110111", Country: "CO"}
	return &entity.Order{
		ID:          "o1",
		OrderNumber: "ORD-20260101-ABCDEF012345",
		Items: []entity.OrderItem{
			{ProductID: "p1", Title: "Camiseta", Price: decimal.NewFromInt(100), Quantity: 2},
			{ProductID: "p2", Title: "Gorra", Price: decimal.RequireFromString("15.50"), Quantity: 1},
		},
		ShippingAddress: addr,
		BillingAddress:  addr,
		PaymentMethod:   entity.PaymentMethodStripe,
		Currency:        "usd",
		Subtotal:        decimal.RequireFromString("215.50"),
		Tax:             decimal.RequireFromString("21.55"),
		Shipping:        decimal.NewFromInt(10),
		Discount:        decimal.Zero,
		Total:           decimal.RequireFromString("247.05"),
		Status:          entity.OrderPending,
		PaymentStatus:   entity.PaymentCompleted,
		CreatedAt:       time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestGenerate_ProducePDF(t *testing.T) {
	g := NewReceiptGenerator("Mi Tienda")
	out, err := g.Generate(sampleOrder(), &entity.User{Email: "ana@example.com", FirstName: "Ana"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerate_SinCliente(t *testing.T) {
	out, err := NewReceiptGenerator("").Generate(sampleOrder(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = NewReceiptGenerator("").Generate(nil, nil)
	assert.Error(t, err)
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "—", formatAddress(entity.Address{City: "X"}))
	assert.Equal(t, "Calle 1\nCali, VAC 7600\nCO", formatAddress(entity.Address{Street: "Calle 1", City: "Cali", State: "VAC", ZipCode: "7600", Country: "CO"}))
	assert.Equal(t, "$10.00", amount(decimal.NewFromInt(10)))
}
