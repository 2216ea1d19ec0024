package loyalty

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tradeyard/backend/internal/logging"
	"github.com/tradeyard/backend/internal/monitoring"
)

// SaleRef identifies the listing a loyalty award is attributed to
type SaleRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// Service handles loyalty point awards
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new loyalty service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// PointsForSale computes the points awarded for a sale: one point per
// whole currency unit, with a floor of one point per sale.
func PointsForSale(saleAmount decimal.Decimal) int64 {
	points := saleAmount.Floor().IntPart()
	if points < 1 {
		points = 1
	}
	return points
}

// AwardForSale grants loyalty points to a seller for a completed sale.
// Callers treat failures as non-fatal; the earnings row is already durable.
func (s *Service) AwardForSale(ctx context.Context, sellerID uuid.UUID, ref SaleRef, saleAmount decimal.Decimal) error {
	points := PointsForSale(saleAmount)

	_, err := s.db.Exec(ctx, `
		INSERT INTO loyalty_points (id, seller_id, points, reason)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), sellerID, points, fmt.Sprintf("sale: %s", ref.Title))
	if err != nil {
		return fmt.Errorf("failed to award loyalty points: %w", err)
	}

	monitoring.RecordLoyaltyPoints(points)
	logger := logging.NewLogger("loyalty")
	logger.Info().
		Str("seller_id", sellerID.String()).
		Str("listing_id", ref.ID.String()).
		Int64("points", points).
		Msg("Loyalty points awarded")

	return nil
}

// Balance returns the seller's total loyalty points
func (s *Service) Balance(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var total int64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0) FROM loyalty_points WHERE seller_id = $1
	`, sellerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum loyalty points: %w", err)
	}
	return total, nil
}
