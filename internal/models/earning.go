package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EarningStatus represents the lifecycle status of a seller earning
type EarningStatus string

const (
	EarningStatusAvailable EarningStatus = "available"
	EarningStatusPending   EarningStatus = "pending"
	EarningStatusPaidOut   EarningStatus = "paid_out"
)

// SellerEarning represents the proceeds of one completed sale.
// Immutable after creation except for Status, which moves from
// available to paid_out when a payout request consumes it.
type SellerEarning struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	SellerID         uuid.UUID       `json:"seller_id" db:"seller_id"`
	ProductID        *uuid.UUID      `json:"product_id,omitempty" db:"product_id"`
	BundleID         *uuid.UUID      `json:"bundle_id,omitempty" db:"bundle_id"`
	SaleAmount       decimal.Decimal `json:"sale_amount" db:"sale_amount"`
	CommissionRate   decimal.Decimal `json:"commission_rate" db:"commission_rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount" db:"commission_amount"`
	PromotionFees    decimal.Decimal `json:"promotion_fees" db:"promotion_fees"`
	NetEarnings      decimal.Decimal `json:"net_earnings" db:"net_earnings"`
	ListingType      ListingType     `json:"listing_type" db:"listing_type"`
	Status           EarningStatus   `json:"status" db:"status"`
	SaleDate         time.Time       `json:"sale_date" db:"sale_date"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`

	// Populated by joins for display, never persisted.
	ListingTitle string `json:"listing_title,omitempty" db:"-"`
}

// SellerEarningsSummary is the derived fold over a seller's earnings rows.
// Paid-out rows contribute to the lifetime totals but to neither bucket.
type SellerEarningsSummary struct {
	TotalSales         decimal.Decimal `json:"total_sales"`
	TotalCommissions   decimal.Decimal `json:"total_commissions"`
	TotalPromotionFees decimal.Decimal `json:"total_promotion_fees"`
	AvailableEarnings  decimal.Decimal `json:"available_earnings"`
	PendingEarnings    decimal.Decimal `json:"pending_earnings"`
}

// ZeroSummary returns an all-zero summary for boundary fallbacks
func ZeroSummary() *SellerEarningsSummary {
	return &SellerEarningsSummary{
		TotalSales:         decimal.Zero,
		TotalCommissions:   decimal.Zero,
		TotalPromotionFees: decimal.Zero,
		AvailableEarnings:  decimal.Zero,
		PendingEarnings:    decimal.Zero,
	}
}
