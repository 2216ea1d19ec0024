package earnings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tradeyard/backend/internal/models"
	"pgregory.net/rapid"
)

func genMoney(t *rapid.T, label string) decimal.Decimal {
	cents := rapid.Int64Range(0, 100_000_00).Draw(t, label)
	return decimal.New(cents, -2)
}

func genRate(t *rapid.T) decimal.Decimal {
	bps := rapid.Int64Range(0, 100_00).Draw(t, "rate_bps")
	return decimal.New(bps, -2)
}

func TestCommissionNeverExceedsSale(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sale := genMoney(t, "sale")
		rate := genRate(t)

		commission := CommissionFor(sale, rate)

		if commission.LessThan(decimal.Zero) {
			t.Fatalf("commission %s is negative for sale %s at rate %s", commission, sale, rate)
		}
		// Rounding can push commission at most half a cent past the exact
		// product, never past the sale amount at a 100% rate.
		if commission.GreaterThan(sale) {
			t.Fatalf("commission %s exceeds sale %s at rate %s", commission, sale, rate)
		}
		if commission.Exponent() < -2 {
			t.Fatalf("commission %s has sub-cent precision", commission)
		}
	})
}

func TestNetPlusCommissionPlusFeesIsSale(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sale := genMoney(t, "sale")
		rate := genRate(t)
		fees := genMoney(t, "fees")

		commission := CommissionFor(sale, rate)
		net := NetEarningsFor(sale, commission, fees)

		if !net.Add(commission).Add(fees).Equal(sale) {
			t.Fatalf("breakdown does not reassemble: net %s + commission %s + fees %s != sale %s",
				net, commission, fees, sale)
		}
	})
}

func genEarningRows(t *rapid.T) []models.SellerEarning {
	n := rapid.IntRange(0, 50).Draw(t, "rows")
	statuses := []models.EarningStatus{
		models.EarningStatusAvailable,
		models.EarningStatusPending,
		models.EarningStatusPaidOut,
	}
	rows := make([]models.SellerEarning, 0, n)
	for i := 0; i < n; i++ {
		sale := genMoney(t, "sale")
		rate := genRate(t)
		fees := genMoney(t, "fees")
		commission := CommissionFor(sale, rate)
		rows = append(rows, models.SellerEarning{
			SaleAmount:       sale,
			CommissionRate:   rate,
			CommissionAmount: commission,
			PromotionFees:    fees,
			NetEarnings:      NetEarningsFor(sale, commission, fees),
			Status:           statuses[rapid.IntRange(0, len(statuses)-1).Draw(t, "status")],
		})
	}
	return rows
}

func TestFoldSummaryPartitionsNetByStatus(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := genEarningRows(t)
		summary := FoldSummary(rows)

		totalNet := decimal.Zero
		paidOut := decimal.Zero
		for _, e := range rows {
			totalNet = totalNet.Add(e.NetEarnings)
			if e.Status == models.EarningStatusPaidOut {
				paidOut = paidOut.Add(e.NetEarnings)
			}
		}

		// Every row's net lands in exactly one of: available, pending, paid out.
		got := summary.AvailableEarnings.Add(summary.PendingEarnings).Add(paidOut)
		if !got.Equal(totalNet) {
			t.Fatalf("status buckets do not partition net: %s != %s", got, totalNet)
		}

		lifetimeNet := summary.TotalSales.Sub(summary.TotalCommissions).Sub(summary.TotalPromotionFees)
		if !lifetimeNet.Equal(totalNet) {
			t.Fatalf("lifetime totals inconsistent with row nets: %s != %s", lifetimeNet, totalNet)
		}
	})
}

func TestFoldSummaryOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := genEarningRows(t)
		forward := FoldSummary(rows)

		reversed := make([]models.SellerEarning, len(rows))
		for i, e := range rows {
			reversed[len(rows)-1-i] = e
		}
		backward := FoldSummary(reversed)

		if !forward.TotalSales.Equal(backward.TotalSales) ||
			!forward.TotalCommissions.Equal(backward.TotalCommissions) ||
			!forward.TotalPromotionFees.Equal(backward.TotalPromotionFees) ||
			!forward.AvailableEarnings.Equal(backward.AvailableEarnings) ||
			!forward.PendingEarnings.Equal(backward.PendingEarnings) {
			t.Fatalf("fold is order dependent: %+v vs %+v", forward, backward)
		}
	})
}
