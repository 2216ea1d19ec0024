package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tradeyard/backend/internal/logging"
	"github.com/tradeyard/backend/internal/models"
	"github.com/tradeyard/backend/internal/monitoring"
)

// Service errors
var (
	ErrNothingToWithdraw = errors.New("no available earnings to withdraw")
	ErrPayoutNotFound    = errors.New("payout request not found")
	ErrInvalidMethod     = errors.New("unknown payout method")
	ErrInvalidStatus     = errors.New("unknown payout status")
	ErrMissingDetails    = errors.New("payout details are required")
)

// Service manages the payout request lifecycle
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new payout service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// payoutColumns is the canonical select list for payout_requests
const payoutColumns = `id, seller_id, requested_amount, total_commission,
	total_promotion_fees, final_payout_amount, payout_method, payout_details,
	status, admin_notes, requested_at, updated_at, processed_at`

// withdrawable is the gate between aggregating a seller's available
// earnings and inserting a payout request. No rows, a zero total, or a
// negative total all mean there is nothing to pay out, so no request row
// may be created.
func withdrawable(earningCount int, totalNet decimal.Decimal) error {
	if earningCount == 0 || !totalNet.GreaterThan(decimal.Zero) {
		return ErrNothingToWithdraw
	}
	return nil
}

// Request converts all of a seller's available earnings into a pending
// payout request. The earnings rows are locked, aggregated, and flipped to
// paid_out in the same transaction that inserts the request, so the rows
// consumed are exactly the rows the recorded breakdown was computed from.
func (s *Service) Request(ctx context.Context, sellerID uuid.UUID, method models.PayoutMethod, details string) (*models.PayoutRequest, error) {
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}
	if details == "" {
		return nil, ErrMissingDetails
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, sale_amount, commission_amount, promotion_fees, net_earnings
		FROM seller_earnings
		WHERE seller_id = $1 AND status = $2
		FOR UPDATE
	`, sellerID, models.EarningStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to lock available earnings: %w", err)
	}

	var (
		earningIDs      []uuid.UUID
		totalSales      = decimal.Zero
		totalCommission = decimal.Zero
		totalFees       = decimal.Zero
		totalNet        = decimal.Zero
	)
	for rows.Next() {
		var (
			id                          uuid.UUID
			sale, commission, fees, net decimal.Decimal
		)
		if err := rows.Scan(&id, &sale, &commission, &fees, &net); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan earning: %w", err)
		}
		earningIDs = append(earningIDs, id)
		totalSales = totalSales.Add(sale)
		totalCommission = totalCommission.Add(commission)
		totalFees = totalFees.Add(fees)
		totalNet = totalNet.Add(net)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earnings: %w", err)
	}

	if err := withdrawable(len(earningIDs), totalNet); err != nil {
		return nil, err
	}

	var req models.PayoutRequest
	err = tx.QueryRow(ctx, `
		INSERT INTO payout_requests (id, seller_id, requested_amount, total_commission,
		                             total_promotion_fees, final_payout_amount,
		                             payout_method, payout_details, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+payoutColumns+`
	`, uuid.New(), sellerID, totalSales, totalCommission, totalFees, totalNet,
		method, details, models.PayoutStatusPending).Scan(
		&req.ID, &req.SellerID, &req.RequestedAmount, &req.TotalCommission,
		&req.TotalPromotionFees, &req.FinalPayoutAmount, &req.PayoutMethod,
		&req.PayoutDetails, &req.Status, &req.AdminNotes, &req.RequestedAt,
		&req.UpdatedAt, &req.ProcessedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create payout request: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE seller_earnings SET status = $1 WHERE id = ANY($2)
	`, models.EarningStatusPaidOut, earningIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to consume earnings: %w", err)
	}
	if int(tag.RowsAffected()) != len(earningIDs) {
		return nil, fmt.Errorf("expected to consume %d earnings, consumed %d", len(earningIDs), tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payout request: %w", err)
	}

	amount, _ := totalNet.Float64()
	monitoring.RecordPayoutTransition(string(models.PayoutStatusPending))
	monitoring.RecordPayoutAmount(amount)
	logging.LogPayout(req.ID.String(), sellerID.String(), string(req.Status), totalNet.String())

	return &req, nil
}

// GetByID fetches one payout request
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	var req models.PayoutRequest
	err := s.db.QueryRow(ctx, `
		SELECT `+payoutColumns+` FROM payout_requests WHERE id = $1
	`, id).Scan(
		&req.ID, &req.SellerID, &req.RequestedAmount, &req.TotalCommission,
		&req.TotalPromotionFees, &req.FinalPayoutAmount, &req.PayoutMethod,
		&req.PayoutDetails, &req.Status, &req.AdminNotes, &req.RequestedAt,
		&req.UpdatedAt, &req.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to get payout request: %w", err)
	}
	return &req, nil
}

// HistoryResponse is a paginated list of payout requests
type HistoryResponse struct {
	Payouts    []models.PayoutRequest `json:"payouts"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// ListSellerPayouts returns a seller's payout requests, newest first
func (s *Service) ListSellerPayouts(ctx context.Context, sellerID uuid.UUID, page, pageSize int) (*HistoryResponse, error) {
	return s.list(ctx, `WHERE seller_id = $1`, `ORDER BY requested_at DESC`, page, pageSize, sellerID)
}

// ListByStatus returns payout requests in one status, oldest first, which
// is the order the admin queue works them in.
func (s *Service) ListByStatus(ctx context.Context, status models.PayoutStatus, page, pageSize int) (*HistoryResponse, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.list(ctx, `WHERE status = $1`, `ORDER BY requested_at ASC`, page, pageSize, status)
}

func (s *Service) list(ctx context.Context, where, order string, page, pageSize int, arg any) (*HistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var total int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM payout_requests `+where, arg).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count payout requests: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+payoutColumns+` FROM payout_requests `+where+` `+order+` LIMIT $2 OFFSET $3
	`, arg, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query payout requests: %w", err)
	}
	defer rows.Close()

	var payouts []models.PayoutRequest
	for rows.Next() {
		var req models.PayoutRequest
		err := rows.Scan(
			&req.ID, &req.SellerID, &req.RequestedAmount, &req.TotalCommission,
			&req.TotalPromotionFees, &req.FinalPayoutAmount, &req.PayoutMethod,
			&req.PayoutDetails, &req.Status, &req.AdminNotes, &req.RequestedAt,
			&req.UpdatedAt, &req.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout request: %w", err)
		}
		payouts = append(payouts, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payout requests: %w", err)
	}

	return &HistoryResponse{
		Payouts:    payouts,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// AdminUpdate moves a payout request along the lifecycle on behalf of an
// admin. The row is locked, the transition checked against the lifecycle,
// and the update guarded on the observed status so a concurrent admin
// cannot double-apply a transition. processed_at is stamped on entry to a
// terminal status and never touched again.
func (s *Service) AdminUpdate(ctx context.Context, payoutID, adminID uuid.UUID, newStatus models.PayoutStatus, adminNotes *string) (*models.PayoutRequest, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current models.PayoutStatus
	err = tx.QueryRow(ctx, `
		SELECT status FROM payout_requests WHERE id = $1 FOR UPDATE
	`, payoutID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to lock payout request: %w", err)
	}

	if !CanTransition(current, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, newStatus)
	}

	processedAt := stampFor(newStatus, time.Now())

	var req models.PayoutRequest
	err = tx.QueryRow(ctx, `
		UPDATE payout_requests
		SET status = $1,
		    admin_notes = COALESCE($2, admin_notes),
		    processed_at = COALESCE($3, processed_at),
		    updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING `+payoutColumns+`
	`, newStatus, adminNotes, processedAt, payoutID, current).Scan(
		&req.ID, &req.SellerID, &req.RequestedAmount, &req.TotalCommission,
		&req.TotalPromotionFees, &req.FinalPayoutAmount, &req.PayoutMethod,
		&req.PayoutDetails, &req.Status, &req.AdminNotes, &req.RequestedAt,
		&req.UpdatedAt, &req.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: status changed concurrently", ErrIllegalTransition)
		}
		return nil, fmt.Errorf("failed to update payout request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payout update: %w", err)
	}

	monitoring.RecordPayoutTransition(string(newStatus))
	logger := logging.NewLogger("payout")
	logger.Info().
		Str("payout_id", req.ID.String()).
		Str("admin_id", adminID.String()).
		Str("from", string(current)).
		Str("to", string(newStatus)).
		Msg("Payout status updated")

	return &req, nil
}
