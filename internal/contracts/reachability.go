package contracts

import (
	"context"

	"github.com/mozilla-ai/urlprobe/internal/domain"
)

// ReachabilityChecker decides whether a candidate website URL is reachable.
type ReachabilityChecker interface {
	// IsReachable normalizes and probes the URL, returning false for any failure.
	IsReachable(ctx context.Context, rawURL string) bool

	// Check performs the same work as IsReachable, returning the details of every probe attempt.
	Check(ctx context.Context, rawURL string) domain.ReachabilityResult
}

// ProbeRecorder receives observations made while checking URLs.
type ProbeRecorder interface {
	// ObserveProbe records a single outbound probe.
	ObserveProbe(outcome domain.ProbeOutcome)

	// ObserveCheck records the verdict of a whole check.
	ObserveCheck(verdict domain.Verdict)
}
