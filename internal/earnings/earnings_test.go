package earnings

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeyard/backend/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCommissionFor(t *testing.T) {
	tests := []struct {
		name       string
		saleAmount string
		rate       string
		want       string
	}{
		{"whole amounts", "100.00", "5", "5.00"},
		{"ten percent", "250.00", "10", "25.00"},
		{"rounds half up", "10.01", "5", "0.50"},
		{"sub cent rounds", "0.10", "5", "0.01"},
		{"zero sale", "0.00", "5", "0.00"},
		{"zero rate", "100.00", "0", "0.00"},
		{"full rate", "100.00", "100", "100.00"},
		{"fractional rate", "99.99", "7.5", "7.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommissionFor(dec(tt.saleAmount), dec(tt.rate))
			assert.True(t, dec(tt.want).Equal(got),
				"CommissionFor(%s, %s) = %s, want %s", tt.saleAmount, tt.rate, got, tt.want)
		})
	}
}

func TestNetEarningsFor(t *testing.T) {
	net := NetEarningsFor(dec("100.00"), dec("5.00"), dec("2.50"))
	assert.True(t, dec("92.50").Equal(net))

	// A zero sale with promotion fees produces a negative net
	net = NetEarningsFor(dec("0.00"), dec("0.00"), dec("3.00"))
	assert.True(t, dec("-3.00").Equal(net))
}

func TestRecordSaleInputValidate(t *testing.T) {
	productID := uuid.New()
	bundleID := uuid.New()

	base := func() *RecordSaleInput {
		return &RecordSaleInput{
			SellerID:    uuid.New(),
			ProductID:   &productID,
			SaleAmount:  dec("50.00"),
			ListingType: models.ListingTypeBuyItNow,
		}
	}

	t.Run("valid product sale", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("valid bundle sale", func(t *testing.T) {
		in := base()
		in.ProductID = nil
		in.BundleID = &bundleID
		require.NoError(t, in.Validate())
	})

	t.Run("missing listing ref", func(t *testing.T) {
		in := base()
		in.ProductID = nil
		assert.ErrorIs(t, in.Validate(), ErrMissingListingRef)
	})

	t.Run("both refs set", func(t *testing.T) {
		in := base()
		in.BundleID = &bundleID
		assert.ErrorIs(t, in.Validate(), ErrAmbiguousListingRef)
	})

	t.Run("unknown listing type", func(t *testing.T) {
		in := base()
		in.ListingType = "garage_sale"
		assert.ErrorIs(t, in.Validate(), ErrInvalidListingType)
	})

	t.Run("negative sale amount", func(t *testing.T) {
		in := base()
		in.SaleAmount = dec("-1.00")
		assert.ErrorIs(t, in.Validate(), ErrNegativeAmount)
	})

	t.Run("negative promotion fees", func(t *testing.T) {
		in := base()
		in.PromotionFees = dec("-0.01")
		assert.ErrorIs(t, in.Validate(), ErrNegativeAmount)
	})

	t.Run("zero sale amount is accepted", func(t *testing.T) {
		in := base()
		in.SaleAmount = decimal.Zero
		require.NoError(t, in.Validate())
	})
}

func TestFoldSummaryEmpty(t *testing.T) {
	summary := FoldSummary(nil)
	require.NotNil(t, summary)
	assert.True(t, summary.TotalSales.IsZero())
	assert.True(t, summary.TotalCommissions.IsZero())
	assert.True(t, summary.TotalPromotionFees.IsZero())
	assert.True(t, summary.AvailableEarnings.IsZero())
	assert.True(t, summary.PendingEarnings.IsZero())
}

func TestFoldSummaryBucketsByStatus(t *testing.T) {
	now := time.Now()
	rows := []models.SellerEarning{
		{
			SaleAmount:       dec("100.00"),
			CommissionAmount: dec("5.00"),
			PromotionFees:    dec("1.00"),
			NetEarnings:      dec("94.00"),
			Status:           models.EarningStatusAvailable,
			SaleDate:         now,
		},
		{
			SaleAmount:       dec("40.00"),
			CommissionAmount: dec("2.00"),
			PromotionFees:    dec("0.00"),
			NetEarnings:      dec("38.00"),
			Status:           models.EarningStatusPending,
			SaleDate:         now,
		},
		{
			SaleAmount:       dec("60.00"),
			CommissionAmount: dec("3.00"),
			PromotionFees:    dec("0.50"),
			NetEarnings:      dec("56.50"),
			Status:           models.EarningStatusPaidOut,
			SaleDate:         now,
		},
	}

	summary := FoldSummary(rows)
	assert.True(t, dec("200.00").Equal(summary.TotalSales))
	assert.True(t, dec("10.00").Equal(summary.TotalCommissions))
	assert.True(t, dec("1.50").Equal(summary.TotalPromotionFees))
	assert.True(t, dec("94.00").Equal(summary.AvailableEarnings))
	assert.True(t, dec("38.00").Equal(summary.PendingEarnings))
}
