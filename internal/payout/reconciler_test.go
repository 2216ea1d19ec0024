package payout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconcilerStartStop(t *testing.T) {
	// hour-long interval: the ticker never fires, so the nil pool is never
	// touched and only the lifecycle is exercised.
	r := NewReconciler(nil, time.Hour, 72*time.Hour)

	r.Start()
	r.Start() // second Start is a no-op

	assert.True(t, r.LastRun().IsZero())

	r.Stop()
	r.Stop() // second Stop is a no-op
}
