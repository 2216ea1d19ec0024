package payout

import (
	"errors"
	"time"

	"github.com/tradeyard/backend/internal/models"
)

// ErrIllegalTransition is returned when an admin update would move a
// payout request along an edge the lifecycle does not allow.
var ErrIllegalTransition = errors.New("illegal payout status transition")

// transitions is the payout lifecycle. Completed and failed are terminal;
// there is no edge back out of them, and no edge skips processing except
// the direct pending failure.
var transitions = map[models.PayoutStatus][]models.PayoutStatus{
	models.PayoutStatusPending:    {models.PayoutStatusProcessing, models.PayoutStatusFailed},
	models.PayoutStatusProcessing: {models.PayoutStatusCompleted, models.PayoutStatusFailed},
	models.PayoutStatusCompleted:  {},
	models.PayoutStatusFailed:     {},
}

// CanTransition reports whether a payout may move from one status to another
func CanTransition(from, to models.PayoutStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status ends the payout lifecycle
func Terminal(status models.PayoutStatus) bool {
	return status == models.PayoutStatusCompleted || status == models.PayoutStatusFailed
}

// stampFor returns the processed_at value for a transition into the given
// status: the moment of entry for a terminal status, nil otherwise. The
// update statement coalesces a nil stamp with the existing column, so a
// terminal timestamp is written exactly once.
func stampFor(status models.PayoutStatus, now time.Time) *time.Time {
	if !Terminal(status) {
		return nil
	}
	return &now
}
