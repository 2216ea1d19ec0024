package commission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tradeyard/backend/internal/cache"
	"github.com/tradeyard/backend/internal/logging"
	"github.com/tradeyard/backend/internal/models"
	"github.com/tradeyard/backend/internal/monitoring"
)

// Service errors
var (
	ErrNoActiveSetting = errors.New("no active commission setting for listing type")
	ErrSettingNotFound = errors.New("commission setting not found")
	ErrRateOutOfRange  = errors.New("commission rate must be between 0 and 100")
	ErrEmptyUpdate     = errors.New("no fields to update")
)

// DefaultCommissionRate is the fallback percentage used when no active
// setting exists for a listing type. Sales must never be blocked by a
// missing rate row.
var DefaultCommissionRate = decimal.NewFromFloat(5.0)

const rateCacheKeyPrefix = "commission:rate:"

// Service resolves and manages per-listing-type commission rates
type Service struct {
	db       *pgxpool.Pool
	redis    *cache.Redis
	cacheTTL time.Duration
}

// NewService creates a new commission service. redis may be nil, which
// disables the rate cache.
func NewService(db *pgxpool.Pool, redis *cache.Redis, cacheTTL time.Duration) *Service {
	return &Service{
		db:       db,
		redis:    redis,
		cacheTTL: cacheTTL,
	}
}

// ResolveRate looks up the active commission rate for a listing type.
// Returns ErrNoActiveSetting when no active row exists; callers that need
// the never-fail behavior use ResolveRateOrDefault.
func (s *Service) ResolveRate(ctx context.Context, listingType models.ListingType) (decimal.Decimal, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, rateCacheKeyPrefix+string(listingType))
		if err == nil {
			if rate, perr := decimal.NewFromString(cached); perr == nil {
				monitoring.RecordCacheHit("commission_rate")
				return rate, nil
			}
		}
		monitoring.RecordCacheMiss("commission_rate")
	}

	start := time.Now()
	var rate decimal.Decimal
	err := s.db.QueryRow(ctx, `
		SELECT commission_rate FROM commission_settings
		WHERE listing_type = $1 AND is_active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`, listingType).Scan(&rate)
	monitoring.RecordDBQuery("commission_rate_lookup", time.Since(start))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrNoActiveSetting
		}
		return decimal.Zero, fmt.Errorf("failed to look up commission rate: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, rateCacheKeyPrefix+string(listingType), rate.String(), s.cacheTTL); err != nil {
			logger := logging.NewLogger("commission")
			logger.Warn().Err(err).Msg("Failed to cache commission rate")
		}
	}

	return rate, nil
}

// ResolveRateOrDefault resolves the rate, falling back to the default on
// any failure. This is the boundary adapter the sale recorder uses.
func (s *Service) ResolveRateOrDefault(ctx context.Context, listingType models.ListingType) decimal.Decimal {
	rate, err := s.ResolveRate(ctx, listingType)
	if err != nil {
		logger := logging.NewLogger("commission")
		logger.Warn().
			Err(err).
			Str("listing_type", string(listingType)).
			Str("default_rate", DefaultCommissionRate.String()).
			Msg("Commission rate lookup failed, using default")
		monitoring.RecordCommissionFallback()
		return DefaultCommissionRate
	}
	return rate
}

// SettingPatch is a partial update to a commission setting
type SettingPatch struct {
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
	IsActive       *bool            `json:"is_active,omitempty"`
}

// ValidatePatch checks a patch for emptiness and rate bounds
func ValidatePatch(patch *SettingPatch) error {
	if patch == nil || (patch.CommissionRate == nil && patch.IsActive == nil) {
		return ErrEmptyUpdate
	}
	if patch.CommissionRate != nil {
		if patch.CommissionRate.LessThan(decimal.Zero) || patch.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
			return ErrRateOutOfRange
		}
	}
	return nil
}

// UpdateSetting applies a partial update to one setting row, stamping
// updated_at and invalidating the cached rate for its listing type.
func (s *Service) UpdateSetting(ctx context.Context, id uuid.UUID, patch *SettingPatch) (*models.CommissionSetting, error) {
	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}

	var setting models.CommissionSetting
	err := s.db.QueryRow(ctx, `
		UPDATE commission_settings
		SET commission_rate = COALESCE($1, commission_rate),
		    is_active = COALESCE($2, is_active),
		    updated_at = NOW()
		WHERE id = $3
		RETURNING id, listing_type, commission_rate, is_active, created_at, updated_at
	`, patch.CommissionRate, patch.IsActive, id).Scan(
		&setting.ID, &setting.ListingType, &setting.CommissionRate,
		&setting.IsActive, &setting.CreatedAt, &setting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to update commission setting: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Delete(ctx, rateCacheKeyPrefix+string(setting.ListingType)); err != nil {
			logger := logging.NewLogger("commission")
			logger.Warn().Err(err).Msg("Failed to invalidate commission rate cache")
		}
	}

	return &setting, nil
}

// ListSettings returns all commission settings for the admin console
func (s *Service) ListSettings(ctx context.Context) ([]models.CommissionSetting, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, listing_type, commission_rate, is_active, created_at, updated_at
		FROM commission_settings
		ORDER BY listing_type, is_active DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query commission settings: %w", err)
	}
	defer rows.Close()

	var settings []models.CommissionSetting
	for rows.Next() {
		var cs models.CommissionSetting
		err := rows.Scan(&cs.ID, &cs.ListingType, &cs.CommissionRate, &cs.IsActive, &cs.CreatedAt, &cs.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission setting: %w", err)
		}
		settings = append(settings, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission settings: %w", err)
	}

	return settings, nil
}
