package payout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/tradeyard/backend/internal/logging"
	"github.com/tradeyard/backend/internal/monitoring"
)

// Reconciler periodically scans for payout requests stuck in processing.
// It only reports; moving a stale request out of processing stays an
// admin decision.
type Reconciler struct {
	db       *pgxpool.Pool
	interval time.Duration
	staleAge time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	lastRun time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewReconciler creates a reconciler that flags processing requests older
// than staleAge, checking every interval.
func NewReconciler(db *pgxpool.Pool, interval, staleAge time.Duration) *Reconciler {
	return &Reconciler{
		db:       db,
		interval: interval,
		staleAge: staleAge,
		log:      logging.NewLogger("payout-reconciler"),
	}
}

// Start launches the reconcile loop. Safe to call once.
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.loop()
	r.log.Info().
		Dur("interval", r.interval).
		Dur("stale_age", r.staleAge).
		Msg("Payout reconciler started")
}

// Stop halts the loop and waits for an in-flight scan to finish
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	done := r.doneCh
	r.mu.Unlock()

	<-done
	r.log.Info().Msg("Payout reconciler stopped")
}

// LastRun returns when the last scan completed
func (r *Reconciler) LastRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

func (r *Reconciler) loop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := r.ScanOnce(ctx); err != nil {
				r.log.Error().Err(err).Msg("Stale payout scan failed")
			}
			cancel()
		case <-r.stopCh:
			return
		}
	}
}

// ScanOnce runs one stale payout scan, logging each stale request found.
// updated_at is stamped on every status transition, so the cutoff measures
// time spent in processing rather than total request age.
func (r *Reconciler) ScanOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-r.staleAge)

	rows, err := r.db.Query(ctx, `
		SELECT id, seller_id, final_payout_amount, requested_at, updated_at
		FROM payout_requests
		WHERE status = 'processing' AND updated_at < $1
		ORDER BY updated_at ASC
	`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to query stale payouts: %w", err)
	}
	defer rows.Close()

	stale := 0
	for rows.Next() {
		var (
			id, sellerID string
			amount       string
			requestedAt  time.Time
			updatedAt    time.Time
		)
		if err := rows.Scan(&id, &sellerID, &amount, &requestedAt, &updatedAt); err != nil {
			return fmt.Errorf("failed to scan stale payout: %w", err)
		}
		stale++
		monitoring.RecordStalePayout()
		r.log.Warn().
			Str("payout_id", id).
			Str("seller_id", sellerID).
			Str("amount", amount).
			Time("requested_at", requestedAt).
			Time("processing_since", updatedAt).
			Msg("Payout request stuck in processing")
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating stale payouts: %w", err)
	}

	r.mu.Lock()
	r.lastRun = time.Now()
	r.mu.Unlock()

	if stale > 0 {
		r.log.Warn().Int("count", stale).Msg("Stale payout scan found stuck requests")
	} else {
		r.log.Debug().Msg("Stale payout scan clean")
	}
	return nil
}
