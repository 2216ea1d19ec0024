package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tradeyard/backend/internal/catalog"
	apierrors "github.com/tradeyard/backend/internal/errors"
	"github.com/tradeyard/backend/internal/models"
)

// pageParams reads the page and page_size query parameters, leaving the
// clamping to the services.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

// handleListProducts lists catalog products with optional filters
func (s *APIServer) handleListProducts(c *gin.Context) {
	filter := &catalog.ListFilter{
		Search:      c.Query("search"),
		IncludeSold: c.Query("include_sold") == "true",
	}
	if lt := c.Query("listing_type"); lt != "" {
		listingType := models.ListingType(lt)
		filter.ListingType = &listingType
	}

	page, pageSize := pageParams(c)
	resp, err := s.catalogSvc.ListProducts(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidListingType) {
			respondError(c, apierrors.NewInvalidRequestError("Unknown listing type"))
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleGetProduct fetches one product
func (s *APIServer) handleGetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid product ID"))
		return
	}

	product, err := s.catalogSvc.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(c, apierrors.ErrProductNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// handleGetBundle fetches one bundle
func (s *APIServer) handleGetBundle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid bundle ID"))
		return
	}

	bundle, err := s.catalogSvc.GetBundle(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrBundleNotFound) {
			respondError(c, apierrors.ErrProductNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, bundle)
}
