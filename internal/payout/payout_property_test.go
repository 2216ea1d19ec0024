package payout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tradeyard/backend/internal/models"
	"pgregory.net/rapid"
)

// The aggregation the request transaction performs over locked earnings rows,
// kept in one place so its invariants can be exercised without a database.
type breakdown struct {
	requested  decimal.Decimal
	commission decimal.Decimal
	fees       decimal.Decimal
	final      decimal.Decimal
}

func aggregate(rows []models.SellerEarning) breakdown {
	b := breakdown{
		requested:  decimal.Zero,
		commission: decimal.Zero,
		fees:       decimal.Zero,
		final:      decimal.Zero,
	}
	for _, e := range rows {
		b.requested = b.requested.Add(e.SaleAmount)
		b.commission = b.commission.Add(e.CommissionAmount)
		b.fees = b.fees.Add(e.PromotionFees)
		b.final = b.final.Add(e.NetEarnings)
	}
	return b
}

func genConsistentRows(t *rapid.T) []models.SellerEarning {
	n := rapid.IntRange(1, 40).Draw(t, "rows")
	rows := make([]models.SellerEarning, 0, n)
	for i := 0; i < n; i++ {
		sale := decimal.New(rapid.Int64Range(0, 500_000_00).Draw(t, "sale_cents"), -2)
		rate := decimal.New(rapid.Int64Range(0, 100_00).Draw(t, "rate_bps"), -2)
		fees := decimal.New(rapid.Int64Range(0, 50_00).Draw(t, "fee_cents"), -2)
		commission := sale.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
		rows = append(rows, models.SellerEarning{
			SaleAmount:       sale,
			CommissionRate:   rate,
			CommissionAmount: commission,
			PromotionFees:    fees,
			NetEarnings:      sale.Sub(commission).Sub(fees),
			Status:           models.EarningStatusAvailable,
		})
	}
	return rows
}

func TestPayoutBreakdownReassembles(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := genConsistentRows(t)
		b := aggregate(rows)

		// The recorded breakdown must account for every unit of the gross:
		// final + commission + fees == requested.
		got := b.final.Add(b.commission).Add(b.fees)
		if !got.Equal(b.requested) {
			t.Fatalf("breakdown does not reassemble: %s + %s + %s != %s",
				b.final, b.commission, b.fees, b.requested)
		}
	})
}

func TestPayoutFinalAmountMatchesRowNets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := genConsistentRows(t)
		b := aggregate(rows)

		sum := decimal.Zero
		for _, e := range rows {
			sum = sum.Add(e.NetEarnings)
		}
		if !b.final.Equal(sum) {
			t.Fatalf("final amount %s does not match summed nets %s", b.final, sum)
		}
	})
}
