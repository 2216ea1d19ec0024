package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestValidatePatch(t *testing.T) {
	rate := func(s string) *decimal.Decimal {
		d, err := decimal.NewFromString(s)
		require.NoError(t, err)
		return &d
	}
	active := true

	t.Run("nil patch", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePatch(nil), ErrEmptyUpdate)
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePatch(&SettingPatch{}), ErrEmptyUpdate)
	})

	t.Run("rate only", func(t *testing.T) {
		require.NoError(t, ValidatePatch(&SettingPatch{CommissionRate: rate("7.50")}))
	})

	t.Run("active only", func(t *testing.T) {
		require.NoError(t, ValidatePatch(&SettingPatch{IsActive: &active}))
	})

	t.Run("boundary rates", func(t *testing.T) {
		require.NoError(t, ValidatePatch(&SettingPatch{CommissionRate: rate("0")}))
		require.NoError(t, ValidatePatch(&SettingPatch{CommissionRate: rate("100")}))
	})

	t.Run("negative rate", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePatch(&SettingPatch{CommissionRate: rate("-0.01")}), ErrRateOutOfRange)
	})

	t.Run("rate above 100", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePatch(&SettingPatch{CommissionRate: rate("100.01")}), ErrRateOutOfRange)
	})
}

func TestValidatePatchRateBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bps := rapid.Int64Range(-50_00, 150_00).Draw(t, "rate_bps")
		rate := decimal.New(bps, -2)

		err := ValidatePatch(&SettingPatch{CommissionRate: &rate})

		inBounds := bps >= 0 && bps <= 100_00
		if inBounds && err != nil {
			t.Fatalf("rate %s rejected: %v", rate, err)
		}
		if !inBounds && err == nil {
			t.Fatalf("rate %s accepted", rate)
		}
	})
}

func TestDefaultCommissionRate(t *testing.T) {
	// The fallback rate must itself satisfy the patch bounds
	require.NoError(t, ValidatePatch(&SettingPatch{CommissionRate: &DefaultCommissionRate}))
	assert.True(t, DefaultCommissionRate.Equal(decimal.NewFromFloat(5.0)))
}
