package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeyard/backend/internal/earnings"
	apierrors "github.com/tradeyard/backend/internal/errors"
	"github.com/tradeyard/backend/internal/middleware"
	"github.com/tradeyard/backend/internal/models"
)

// recordSaleRequest is the wire shape for recording a sale. The seller is
// taken from the authenticated context, never from the body.
type recordSaleRequest struct {
	ProductID     *uuid.UUID         `json:"product_id"`
	BundleID      *uuid.UUID         `json:"bundle_id"`
	SaleAmount    decimal.Decimal    `json:"sale_amount" binding:"required"`
	ListingType   models.ListingType `json:"listing_type" binding:"required"`
	PromotionFees decimal.Decimal    `json:"promotion_fees"`
	SaleDate      *time.Time         `json:"sale_date"`
}

// handleRecordSale records a completed sale for the authenticated seller
func (s *APIServer) handleRecordSale(c *gin.Context) {
	sellerID := middleware.GetUserIDFromContext(c)
	if sellerID == uuid.Nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return
	}

	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	in := &earnings.RecordSaleInput{
		SellerID:      sellerID,
		ProductID:     req.ProductID,
		BundleID:      req.BundleID,
		SaleAmount:    req.SaleAmount,
		ListingType:   req.ListingType,
		PromotionFees: req.PromotionFees,
	}
	if req.SaleDate != nil {
		in.SaleDate = *req.SaleDate
	}

	earning, err := s.earningsSvc.RecordSale(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, earnings.ErrMissingListingRef),
			errors.Is(err, earnings.ErrAmbiguousListingRef),
			errors.Is(err, earnings.ErrInvalidListingType),
			errors.Is(err, earnings.ErrNegativeAmount):
			respondError(c, apierrors.NewValidationError(err.Error()))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, earning)
}

// handleListEarnings lists the authenticated seller's earnings
func (s *APIServer) handleListEarnings(c *gin.Context) {
	sellerID := middleware.GetUserIDFromContext(c)
	if sellerID == uuid.Nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return
	}

	page, pageSize := pageParams(c)
	resp, err := s.earningsSvc.ListSellerEarnings(c.Request.Context(), sellerID, page, pageSize)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleEarningsSummary returns the seller's earnings summary. The summary
// page must always render, so failures degrade to zeros rather than a 500.
func (s *APIServer) handleEarningsSummary(c *gin.Context) {
	sellerID := middleware.GetUserIDFromContext(c)
	if sellerID == uuid.Nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return
	}

	summary := s.earningsSvc.SummaryOrZero(c.Request.Context(), sellerID)
	c.JSON(http.StatusOK, summary)
}

// handleLoyaltyBalance returns the seller's loyalty point balance
func (s *APIServer) handleLoyaltyBalance(c *gin.Context) {
	sellerID := middleware.GetUserIDFromContext(c)
	if sellerID == uuid.Nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return
	}

	balance, err := s.loyaltySvc.Balance(c.Request.Context(), sellerID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"seller_id": sellerID, "points": balance})
}
