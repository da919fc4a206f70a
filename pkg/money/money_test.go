package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"230", 23000},
		{"0", 0},
		{"0.01", 1},
		{"10.005", 1001}, // mitad hacia arriba
		{"10.004", 1000},
		{"19.995", 2000},
		{"1.015", 102}, // con float64 daría 101
		{"0.285", 29},
		{"99999999.99", 9999999999},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestToMinorUnits_Negativo(t *testing.T) {
	_, err := ToMinorUnits(decimal.RequireFromString("-1"))
	assert.Error(t, err)
}

func TestFromMinorUnitsAndFormat(t *testing.T) {
	assert.True(t, FromMinorUnits(23000).Equal(decimal.NewFromInt(230)))
	assert.Equal(t, "230.00 USD", Format(decimal.NewFromInt(230), "usd"))
	assert.Equal(t, "0.29 EUR", Format(decimal.RequireFromString("0.285"), "eur"))
}
