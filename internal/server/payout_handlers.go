package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/tradeyard/backend/internal/errors"
	"github.com/tradeyard/backend/internal/middleware"
	"github.com/tradeyard/backend/internal/models"
	"github.com/tradeyard/backend/internal/payout"
)

// requestPayoutRequest is the wire shape for requesting a payout
type requestPayoutRequest struct {
	PayoutMethod  models.PayoutMethod `json:"payout_method" binding:"required"`
	PayoutDetails string              `json:"payout_details" binding:"required"`
}

// handleRequestPayout converts the seller's available earnings into a
// pending payout request
func (s *APIServer) handleRequestPayout(c *gin.Context) {
	sellerID := middleware.GetUserIDFromContext(c)
	if sellerID == uuid.Nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return
	}

	var req requestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.payoutSvc.Request(c.Request.Context(), sellerID, req.PayoutMethod, req.PayoutDetails)
	if err != nil {
		switch {
		case errors.Is(err, payout.ErrNothingToWithdraw):
			respondError(c, apierrors.ErrNothingToWithdrawError)
		case errors.Is(err, payout.ErrInvalidMethod), errors.Is(err, payout.ErrMissingDetails):
			respondError(c, apierrors.NewValidationError(err.Error()))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// handleListPayouts lists the authenticated seller's payout requests
func (s *APIServer) handleListPayouts(c *gin.Context) {
	sellerID := middleware.GetUserIDFromContext(c)
	if sellerID == uuid.Nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return
	}

	page, pageSize := pageParams(c)
	resp, err := s.payoutSvc.ListSellerPayouts(c.Request.Context(), sellerID, page, pageSize)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleGetPayout fetches one payout request. Sellers can only see their own.
func (s *APIServer) handleGetPayout(c *gin.Context) {
	sellerID := middleware.GetUserIDFromContext(c)
	if sellerID == uuid.Nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid payout ID"))
		return
	}

	req, err := s.payoutSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, payout.ErrPayoutNotFound) {
			respondError(c, apierrors.ErrPayoutNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	// Ownership check responds not-found to avoid leaking other sellers' IDs
	if req.SellerID != sellerID {
		respondError(c, apierrors.ErrPayoutNotFoundError)
		return
	}

	c.JSON(http.StatusOK, req)
}
