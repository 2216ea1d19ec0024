package models

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyAward represents loyalty points granted to a seller for a sale
type LoyaltyAward struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SellerID  uuid.UUID `json:"seller_id" db:"seller_id"`
	Points    int64     `json:"points" db:"points"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
