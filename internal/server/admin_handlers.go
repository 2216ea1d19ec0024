package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tradeyard/backend/internal/commission"
	apierrors "github.com/tradeyard/backend/internal/errors"
	"github.com/tradeyard/backend/internal/middleware"
	"github.com/tradeyard/backend/internal/models"
	"github.com/tradeyard/backend/internal/payout"
)

// handleAdminListPayouts lists payout requests by status, oldest first.
// Defaults to the pending queue.
func (s *APIServer) handleAdminListPayouts(c *gin.Context) {
	status := models.PayoutStatus(c.DefaultQuery("status", string(models.PayoutStatusPending)))

	page, pageSize := pageParams(c)
	resp, err := s.payoutSvc.ListByStatus(c.Request.Context(), status, page, pageSize)
	if err != nil {
		if errors.Is(err, payout.ErrInvalidStatus) {
			respondError(c, apierrors.NewInvalidRequestError("Unknown payout status"))
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// adminUpdatePayoutRequest is the wire shape for a payout status update
type adminUpdatePayoutRequest struct {
	Status     models.PayoutStatus `json:"status" binding:"required"`
	AdminNotes *string             `json:"admin_notes"`
}

// handleAdminUpdatePayout moves a payout request along its lifecycle
func (s *APIServer) handleAdminUpdatePayout(c *gin.Context) {
	adminID := middleware.GetUserIDFromContext(c)
	if adminID == uuid.Nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid payout ID"))
		return
	}

	var req adminUpdatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.payoutSvc.AdminUpdate(c.Request.Context(), id, adminID, req.Status, req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, payout.ErrPayoutNotFound):
			respondError(c, apierrors.ErrPayoutNotFoundError)
		case errors.Is(err, payout.ErrIllegalTransition):
			respondError(c, apierrors.ErrIllegalTransitionError)
		case errors.Is(err, payout.ErrInvalidStatus):
			respondError(c, apierrors.NewValidationError("Unknown payout status"))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleAdminListSettings lists commission settings
func (s *APIServer) handleAdminListSettings(c *gin.Context) {
	settings, err := s.commissionSvc.ListSettings(c.Request.Context())
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// handleAdminUpdateSetting applies a partial update to a commission setting
func (s *APIServer) handleAdminUpdateSetting(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid setting ID"))
		return
	}

	var patch commission.SettingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	setting, err := s.commissionSvc.UpdateSetting(c.Request.Context(), id, &patch)
	if err != nil {
		switch {
		case errors.Is(err, commission.ErrSettingNotFound):
			respondError(c, apierrors.ErrSettingNotFoundError)
		case errors.Is(err, commission.ErrRateOutOfRange), errors.Is(err, commission.ErrEmptyUpdate):
			respondError(c, apierrors.NewValidationError(err.Error()))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, setting)
}
