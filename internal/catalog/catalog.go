package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tradeyard/backend/internal/models"
)

// Service errors
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrBundleNotFound     = errors.New("bundle not found")
	ErrInvalidListingType = errors.New("unknown listing type")
)

// Service provides read access to the product and bundle catalog
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new catalog service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// ListFilter narrows a catalog listing query
type ListFilter struct {
	ListingType *models.ListingType
	Search      string
	IncludeSold bool
}

// ProductListResponse is a paginated product listing
type ProductListResponse struct {
	Products   []models.Product `json:"products"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// ListProducts returns products matching the filter, newest first
func (s *Service) ListProducts(ctx context.Context, filter *ListFilter, page, pageSize int) (*ProductListResponse, error) {
	if filter == nil {
		filter = &ListFilter{}
	}
	if filter.ListingType != nil && !filter.ListingType.Valid() {
		return nil, ErrInvalidListingType
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	where := `WHERE ($1::text IS NULL OR listing_type = $1::text)
		AND ($2 = '' OR title ILIKE '%' || $2 || '%')
		AND ($3 OR NOT is_sold)`

	var total int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where,
		filter.ListingType, filter.Search, filter.IncludeSold).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, seller_id, title, description, price, listing_type,
		       image_url, is_sold, created_at, updated_at
		FROM products `+where+`
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, filter.ListingType, filter.Search, filter.IncludeSold, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Price,
			&p.ListingType, &p.ImageURL, &p.IsSold, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return &ProductListResponse{
		Products:   products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// GetProduct fetches one product by ID
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := s.db.QueryRow(ctx, `
		SELECT id, seller_id, title, description, price, listing_type,
		       image_url, is_sold, created_at, updated_at
		FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Price,
		&p.ListingType, &p.ImageURL, &p.IsSold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// GetBundle fetches one bundle by ID
func (s *Service) GetBundle(ctx context.Context, id uuid.UUID) (*models.Bundle, error) {
	var b models.Bundle
	err := s.db.QueryRow(ctx, `
		SELECT id, seller_id, title, description, price, listing_type,
		       is_sold, created_at
		FROM bundles WHERE id = $1
	`, id).Scan(&b.ID, &b.SellerID, &b.Title, &b.Description, &b.Price,
		&b.ListingType, &b.IsSold, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBundleNotFound
		}
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}
	return &b, nil
}
