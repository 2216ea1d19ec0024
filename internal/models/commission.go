package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionSetting represents the platform commission rate for one listing type.
// At most one setting per listing type is expected to be active at a time.
type CommissionSetting struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	ListingType    ListingType     `json:"listing_type" db:"listing_type"`
	CommissionRate decimal.Decimal `json:"commission_rate" db:"commission_rate"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}
