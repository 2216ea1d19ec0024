package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPointsForSale(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"0.00", 1},
		{"0.99", 1},
		{"1.00", 1},
		{"1.99", 1},
		{"2.00", 2},
		{"99.99", 99},
		{"100.00", 100},
		{"12345.67", 12345},
	}

	for _, tt := range tests {
		amount, err := decimal.NewFromString(tt.amount)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, PointsForSale(amount), "PointsForSale(%s)", tt.amount)
	}
}

func TestPointsForSaleProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(0, 1_000_000_00).Draw(t, "cents")
		amount := decimal.New(cents, -2)

		points := PointsForSale(amount)

		// Every sale awards at least one point
		if points < 1 {
			t.Fatalf("sale of %s awarded %d points", amount, points)
		}
		// Points never exceed the whole currency units of the sale
		if whole := cents / 100; whole >= 1 && points > whole {
			t.Fatalf("sale of %s awarded %d points, more than %d whole units", amount, points, whole)
		}
	})
}
