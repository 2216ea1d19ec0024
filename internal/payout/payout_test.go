package payout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tradeyard/backend/internal/models"
)

func TestWithdrawable(t *testing.T) {
	tests := []struct {
		name         string
		earningCount int
		totalNet     decimal.Decimal
		wantErr      error
	}{
		{"no available earnings", 0, decimal.Zero, ErrNothingToWithdraw},
		{"zero net total", 3, decimal.Zero, ErrNothingToWithdraw},
		{"negative net total", 2, decimal.NewFromFloat(-10.50), ErrNothingToWithdraw},
		{"positive net total", 1, decimal.NewFromFloat(0.01), nil},
		{"typical balance", 5, decimal.NewFromFloat(249.90), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := withdrawable(tt.earningCount, tt.totalNet)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestRejectsBadInputBeforeTouchingStorage(t *testing.T) {
	// nil pool: reaching the database would panic, so these pass only if
	// validation fails first.
	svc := NewService(nil)

	_, err := svc.Request(context.Background(), uuid.New(), models.PayoutMethod("cheque"), "acct-1")
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, err = svc.Request(context.Background(), uuid.New(), models.PayoutMethodBank, "")
	assert.ErrorIs(t, err, ErrMissingDetails)
}
