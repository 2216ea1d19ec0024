package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutMethod represents the method used to pay a seller
type PayoutMethod string

const (
	PayoutMethodPaypal PayoutMethod = "paypal"
	PayoutMethodBank   PayoutMethod = "bank"
	PayoutMethodCrypto PayoutMethod = "crypto"
)

// Valid reports whether m is a known payout method
func (m PayoutMethod) Valid() bool {
	switch m {
	case PayoutMethodPaypal, PayoutMethodBank, PayoutMethodCrypto:
		return true
	}
	return false
}

// PayoutStatus represents the status of a payout request
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
)

// Valid reports whether s is a known payout status
func (s PayoutStatus) Valid() bool {
	switch s {
	case PayoutStatusPending, PayoutStatusProcessing, PayoutStatusCompleted, PayoutStatusFailed:
		return true
	}
	return false
}

// PayoutRequest represents a seller-initiated withdrawal of available earnings.
// The commission and fee totals are re-aggregated from the consumed earnings
// rows at creation time so the request carries its own audit breakdown.
type PayoutRequest struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	SellerID           uuid.UUID       `json:"seller_id" db:"seller_id"`
	RequestedAmount    decimal.Decimal `json:"requested_amount" db:"requested_amount"`
	TotalCommission    decimal.Decimal `json:"total_commission" db:"total_commission"`
	TotalPromotionFees decimal.Decimal `json:"total_promotion_fees" db:"total_promotion_fees"`
	FinalPayoutAmount  decimal.Decimal `json:"final_payout_amount" db:"final_payout_amount"`
	PayoutMethod       PayoutMethod    `json:"payout_method" db:"payout_method"`
	PayoutDetails      string          `json:"payout_details" db:"payout_details"`
	Status             PayoutStatus    `json:"status" db:"status"`
	AdminNotes         *string         `json:"admin_notes,omitempty" db:"admin_notes"`
	RequestedAt        time.Time       `json:"requested_at" db:"requested_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
	ProcessedAt        *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
}
