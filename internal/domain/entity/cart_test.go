package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/domain"
)

func line(id string, price string, qty int) CartLine {
	return CartLine{ProductID: id, Title: "P " + id, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestCart_AddMergesByProduct(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(line("a", "10.00", 1)))
	require.NoError(t, c.Add(line("b", "5.50", 2)))
	require.NoError(t, c.Add(line("a", "10", 3)))

	lines := c.Lines()
	require.Len(t, lines, 2, "el mismo producto no debe duplicar la línea")
	assert.Equal(t, "a", lines[0].ProductID)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, 6, c.Count())
	assert.True(t, c.Total().Equal(decimal.RequireFromString("51")))
}

func TestCart_VariantsAreSeparateLines(t *testing.T) {
	c := NewCart()
	l1 := line("a", "10", 1)
	l1.VariantID = "v1"
	l2 := line("a", "12", 1)
	l2.VariantID = "v2"
	require.NoError(t, c.Add(l1))
	require.NoError(t, c.Add(l2))
	assert.Len(t, c.Lines(), 2)
}

func TestCart_AddRejectsInvalidLines(t *testing.T) {
	cases := []struct {
		name string
		in   CartLine
	}{
		{"sin producto", CartLine{Price: decimal.NewFromInt(1), Quantity: 1}},
		{"cantidad cero", line("a", "1", 0)},
		{"cantidad negativa", line("a", "1", -2)},
		{"precio cero", line("a", "0", 1)},
		{"precio negativo", line("a", "-3", 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCart()
			err := c.Add(tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.True(t, c.IsEmpty())
		})
	}
}

func TestCart_ConflictingPrice(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(line("a", "10", 1)))
	err := c.Add(line("a", "9.99", 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, c.Count(), "la línea original no debe cambiar")
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(line("a", "2", 1)))
	require.NoError(t, c.Add(line("b", "3", 1)))

	require.NoError(t, c.SetQuantity("a", "", 5))
	assert.Equal(t, 6, c.Count())

	require.NoError(t, c.SetQuantity("a", "", 0))
	assert.Len(t, c.Lines(), 1)
	assert.Equal(t, "b", c.Lines()[0].ProductID)

	assert.ErrorIs(t, c.SetQuantity("zzz", "", 1), domain.ErrNotFound)

	// el índice sigue consistente después de borrar
	require.NoError(t, c.Add(line("b", "3", 2)))
	assert.Equal(t, 3, c.Count())

	c.Remove("b", "")
	assert.True(t, c.IsEmpty())
}

func TestCart_ToOrderItems(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(line("a", "100", 2)))
	items := c.ToOrderItems()
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ProductID)
	assert.True(t, items[0].LineTotal().Equal(decimal.NewFromInt(200)))
}
