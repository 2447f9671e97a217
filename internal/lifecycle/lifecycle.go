// Package lifecycle tracks what the process is doing right now, for the health endpoint
// and for shutdown.
package lifecycle

import (
	"sync/atomic"
	"time"
)

// Phase is the station's current activity.
type Phase string

const (
	PhaseStarting     Phase = "starting"
	PhaseRefreshing   Phase = "refreshing"
	PhaseSleeping     Phase = "sleeping"
	PhaseServing      Phase = "serving"
	PhaseShuttingDown Phase = "shutting-down"
)

var (
	phase       atomic.Value // Phase
	lastRefresh atomic.Int64 // unix seconds, 0 = never
)

func init() {
	phase.Store(PhaseStarting)
}

// SetPhase records the current activity. Shutting down is sticky until Reset.
func SetPhase(p Phase) {
	if CurrentPhase() == PhaseShuttingDown {
		return
	}
	phase.Store(p)
}

func CurrentPhase() Phase {
	return phase.Load().(Phase)
}

// SetShuttingDown marks the process as draining. Call when SIGTERM/SIGINT is received.
func SetShuttingDown() {
	phase.Store(PhaseShuttingDown)
}

func IsShuttingDown() bool {
	return CurrentPhase() == PhaseShuttingDown
}

// RecordRefresh stores the time a frame last reached the display.
func RecordRefresh(t time.Time) {
	lastRefresh.Store(t.Unix())
}

// LastRefresh returns the last successful refresh, or the zero time if none.
func LastRefresh() time.Time {
	secs := lastRefresh.Load()
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// Reset restores the initial state. Used by tests.
func Reset() {
	phase.Store(PhaseStarting)
	lastRefresh.Store(0)
}
