package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingType represents the sale mechanism of a listing
type ListingType string

const (
	ListingTypeBuyItNow   ListingType = "buy_it_now"
	ListingTypeMakeOffer  ListingType = "make_offer"
	ListingTypeClassified ListingType = "classified"
	ListingTypeAuction    ListingType = "auction"
)

// Valid reports whether lt is a known listing type
func (lt ListingType) Valid() bool {
	switch lt {
	case ListingTypeBuyItNow, ListingTypeMakeOffer, ListingTypeClassified, ListingTypeAuction:
		return true
	}
	return false
}

// Product represents a single item listed for sale
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SellerID    uuid.UUID       `json:"seller_id" db:"seller_id"`
	Title       string          `json:"title" db:"title"`
	Description *string         `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ListingType ListingType     `json:"listing_type" db:"listing_type"`
	ImageURL    *string         `json:"image_url,omitempty" db:"image_url"`
	IsSold      bool            `json:"is_sold" db:"is_sold"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Bundle represents a group of products sold together
type Bundle struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SellerID    uuid.UUID       `json:"seller_id" db:"seller_id"`
	Title       string          `json:"title" db:"title"`
	Description *string         `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ListingType ListingType     `json:"listing_type" db:"listing_type"`
	IsSold      bool            `json:"is_sold" db:"is_sold"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
