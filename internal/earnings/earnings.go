package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tradeyard/backend/internal/commission"
	"github.com/tradeyard/backend/internal/logging"
	"github.com/tradeyard/backend/internal/loyalty"
	"github.com/tradeyard/backend/internal/models"
	"github.com/tradeyard/backend/internal/monitoring"
)

// Service errors
var (
	ErrMissingListingRef   = errors.New("sale must reference a product or a bundle")
	ErrAmbiguousListingRef = errors.New("sale cannot reference both a product and a bundle")
	ErrInvalidListingType  = errors.New("unknown listing type")
	ErrNegativeAmount      = errors.New("sale amount and promotion fees cannot be negative")
)

// moneyPrecision is the number of decimal places for money amounts
const moneyPrecision = 2

// Service records sales and aggregates seller earnings
type Service struct {
	db      *pgxpool.Pool
	rates   *commission.Service
	loyalty *loyalty.Service
}

// NewService creates a new earnings service
func NewService(db *pgxpool.Pool, rates *commission.Service, loyaltySvc *loyalty.Service) *Service {
	return &Service{
		db:      db,
		rates:   rates,
		loyalty: loyaltySvc,
	}
}

// CommissionFor computes the platform commission for a sale amount at a
// percentage rate, rounded to money precision.
func CommissionFor(saleAmount, rate decimal.Decimal) decimal.Decimal {
	return saleAmount.Mul(rate).Div(decimal.NewFromInt(100)).Round(moneyPrecision)
}

// NetEarningsFor computes the seller's net proceeds. A zero sale with
// nonzero promotion fees yields a negative net; that is accepted here.
func NetEarningsFor(saleAmount, commissionAmount, promotionFees decimal.Decimal) decimal.Decimal {
	return saleAmount.Sub(commissionAmount).Sub(promotionFees)
}

// RecordSaleInput describes one completed sale
type RecordSaleInput struct {
	SellerID      uuid.UUID          `json:"seller_id"`
	ProductID     *uuid.UUID         `json:"product_id,omitempty"`
	BundleID      *uuid.UUID         `json:"bundle_id,omitempty"`
	SaleAmount    decimal.Decimal    `json:"sale_amount"`
	ListingType   models.ListingType `json:"listing_type"`
	PromotionFees decimal.Decimal    `json:"promotion_fees"`
	SaleDate      time.Time          `json:"sale_date"`
}

// Validate checks the structural invariants of a sale before recording
func (in *RecordSaleInput) Validate() error {
	if in.ProductID == nil && in.BundleID == nil {
		return ErrMissingListingRef
	}
	if in.ProductID != nil && in.BundleID != nil {
		return ErrAmbiguousListingRef
	}
	if !in.ListingType.Valid() {
		return ErrInvalidListingType
	}
	if in.SaleAmount.LessThan(decimal.Zero) || in.PromotionFees.LessThan(decimal.Zero) {
		return ErrNegativeAmount
	}
	return nil
}

// RecordSale resolves the commission rate, computes the earning breakdown,
// persists the earning with status available, and fires the loyalty award.
// The earnings row is durable before the award is attempted; an award
// failure is logged and never rolls the sale back.
func (s *Service) RecordSale(ctx context.Context, in *RecordSaleInput) (*models.SellerEarning, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rate := s.rates.ResolveRateOrDefault(ctx, in.ListingType)
	commissionAmount := CommissionFor(in.SaleAmount, rate)
	netEarnings := NetEarningsFor(in.SaleAmount, commissionAmount, in.PromotionFees)

	saleDate := in.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	start := time.Now()
	var earning models.SellerEarning
	err := s.db.QueryRow(ctx, `
		INSERT INTO seller_earnings (id, seller_id, product_id, bundle_id, sale_amount,
		                             commission_rate, commission_amount, promotion_fees,
		                             net_earnings, listing_type, status, sale_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, seller_id, product_id, bundle_id, sale_amount, commission_rate,
		          commission_amount, promotion_fees, net_earnings, listing_type,
		          status, sale_date, created_at
	`, uuid.New(), in.SellerID, in.ProductID, in.BundleID, in.SaleAmount,
		rate, commissionAmount, in.PromotionFees, netEarnings, in.ListingType,
		models.EarningStatusAvailable, saleDate).Scan(
		&earning.ID, &earning.SellerID, &earning.ProductID, &earning.BundleID,
		&earning.SaleAmount, &earning.CommissionRate, &earning.CommissionAmount,
		&earning.PromotionFees, &earning.NetEarnings, &earning.ListingType,
		&earning.Status, &earning.SaleDate, &earning.CreatedAt,
	)
	monitoring.RecordDBQuery("record_sale", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	commissionFloat, _ := commissionAmount.Float64()
	monitoring.RecordSale(string(in.ListingType), commissionFloat)
	logging.LogSale(in.SellerID.String(), earning.ID.String(), string(in.ListingType),
		in.SaleAmount.String(), commissionAmount.String(), netEarnings.String())

	// Loyalty award rides behind the durable earnings row. Not transactional
	// with it: a failed award loses points, never money.
	if s.loyalty != nil {
		ref := s.listingRef(ctx, in.ProductID, in.BundleID)
		if err := s.loyalty.AwardForSale(ctx, in.SellerID, ref, in.SaleAmount); err != nil {
			logger := logging.NewLogger("earnings")
			logger.Warn().
				Err(err).
				Str("earning_id", earning.ID.String()).
				Msg("Loyalty award failed after sale was recorded")
		}
	}

	return &earning, nil
}

// listingRef resolves the display title of the sold listing for the
// loyalty award, degrading to a placeholder when the lookup fails.
func (s *Service) listingRef(ctx context.Context, productID, bundleID *uuid.UUID) loyalty.SaleRef {
	var (
		id    uuid.UUID
		title string
		err   error
	)
	switch {
	case productID != nil:
		id = *productID
		err = s.db.QueryRow(ctx, `SELECT title FROM products WHERE id = $1`, id).Scan(&title)
	case bundleID != nil:
		id = *bundleID
		err = s.db.QueryRow(ctx, `SELECT title FROM bundles WHERE id = $1`, id).Scan(&title)
	}
	if err != nil || title == "" {
		title = "listing"
	}
	return loyalty.SaleRef{ID: id, Title: title}
}

// EarningsHistoryResponse is a paginated list of a seller's earnings
type EarningsHistoryResponse struct {
	Earnings   []models.SellerEarning `json:"earnings"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// ListSellerEarnings returns a seller's earnings, newest sale first,
// joined with listing titles for display.
func (s *Service) ListSellerEarnings(ctx context.Context, sellerID uuid.UUID, page, pageSize int) (*EarningsHistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM seller_earnings WHERE seller_id = $1
	`, sellerID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count earnings: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT e.id, e.seller_id, e.product_id, e.bundle_id, e.sale_amount,
		       e.commission_rate, e.commission_amount, e.promotion_fees,
		       e.net_earnings, e.listing_type, e.status, e.sale_date, e.created_at,
		       COALESCE(p.title, b.title, '') AS listing_title
		FROM seller_earnings e
		LEFT JOIN products p ON p.id = e.product_id
		LEFT JOIN bundles b ON b.id = e.bundle_id
		WHERE e.seller_id = $1
		ORDER BY e.sale_date DESC
		LIMIT $2 OFFSET $3
	`, sellerID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query earnings: %w", err)
	}
	defer rows.Close()

	var earnings []models.SellerEarning
	for rows.Next() {
		var e models.SellerEarning
		err := rows.Scan(
			&e.ID, &e.SellerID, &e.ProductID, &e.BundleID, &e.SaleAmount,
			&e.CommissionRate, &e.CommissionAmount, &e.PromotionFees,
			&e.NetEarnings, &e.ListingType, &e.Status, &e.SaleDate, &e.CreatedAt,
			&e.ListingTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earning: %w", err)
		}
		earnings = append(earnings, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earnings: %w", err)
	}

	return &EarningsHistoryResponse{
		Earnings:   earnings,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Summary computes the seller's earnings summary. The aggregate is pushed
// to the database when possible; on aggregation failure it falls back to
// fetching the rows and folding them in process.
func (s *Service) Summary(ctx context.Context, sellerID uuid.UUID) (*models.SellerEarningsSummary, error) {
	start := time.Now()
	summary := models.ZeroSummary()
	err := s.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(sale_amount), 0),
			COALESCE(SUM(commission_amount), 0),
			COALESCE(SUM(promotion_fees), 0),
			COALESCE(SUM(net_earnings) FILTER (WHERE status = 'available'), 0),
			COALESCE(SUM(net_earnings) FILTER (WHERE status = 'pending'), 0)
		FROM seller_earnings
		WHERE seller_id = $1
	`, sellerID).Scan(
		&summary.TotalSales,
		&summary.TotalCommissions,
		&summary.TotalPromotionFees,
		&summary.AvailableEarnings,
		&summary.PendingEarnings,
	)
	monitoring.RecordDBQuery("earnings_summary", time.Since(start))
	if err == nil {
		return summary, nil
	}

	logger := logging.NewLogger("earnings")
	logger.Warn().
		Err(err).
		Str("seller_id", sellerID.String()).
		Msg("Aggregate summary query failed, folding rows in process")

	rows, ferr := s.fetchAllEarnings(ctx, sellerID)
	if ferr != nil {
		return nil, fmt.Errorf("failed to compute earnings summary: %w", ferr)
	}
	return FoldSummary(rows), nil
}

// SummaryOrZero is the UI boundary adapter: the summary pages must always
// have renderable numbers, so any failure degrades to the zero summary.
func (s *Service) SummaryOrZero(ctx context.Context, sellerID uuid.UUID) *models.SellerEarningsSummary {
	summary, err := s.Summary(ctx, sellerID)
	if err != nil {
		logger := logging.NewLogger("earnings")
		logger.Error().
			Err(err).
			Str("seller_id", sellerID.String()).
			Msg("Earnings summary unavailable, returning zero summary")
		return models.ZeroSummary()
	}
	return summary
}

// FoldSummary folds earnings rows into a summary. Lifetime totals
// accumulate unconditionally; net earnings are bucketed by status, with
// paid-out rows contributing to neither bucket.
func FoldSummary(rows []models.SellerEarning) *models.SellerEarningsSummary {
	summary := models.ZeroSummary()
	for _, e := range rows {
		summary.TotalSales = summary.TotalSales.Add(e.SaleAmount)
		summary.TotalCommissions = summary.TotalCommissions.Add(e.CommissionAmount)
		summary.TotalPromotionFees = summary.TotalPromotionFees.Add(e.PromotionFees)

		switch e.Status {
		case models.EarningStatusAvailable:
			summary.AvailableEarnings = summary.AvailableEarnings.Add(e.NetEarnings)
		case models.EarningStatusPending:
			summary.PendingEarnings = summary.PendingEarnings.Add(e.NetEarnings)
		}
	}
	return summary
}

// fetchAllEarnings loads every earnings row for a seller, for the fold fallback
func (s *Service) fetchAllEarnings(ctx context.Context, sellerID uuid.UUID) ([]models.SellerEarning, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, seller_id, product_id, bundle_id, sale_amount, commission_rate,
		       commission_amount, promotion_fees, net_earnings, listing_type,
		       status, sale_date, created_at
		FROM seller_earnings
		WHERE seller_id = $1
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query earnings: %w", err)
	}
	defer rows.Close()

	var earnings []models.SellerEarning
	for rows.Next() {
		var e models.SellerEarning
		err := rows.Scan(
			&e.ID, &e.SellerID, &e.ProductID, &e.BundleID, &e.SaleAmount,
			&e.CommissionRate, &e.CommissionAmount, &e.PromotionFees,
			&e.NetEarnings, &e.ListingType, &e.Status, &e.SaleDate, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earning: %w", err)
		}
		earnings = append(earnings, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earnings: %w", err)
	}

	return earnings, nil
}
