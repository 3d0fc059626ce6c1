package domain

import "time"

const (
	ProbeMethodGet  ProbeMethod = "GET"
	ProbeMethodHead ProbeMethod = "HEAD"
)

const (
	VerdictReachable   Verdict = "reachable"
	VerdictUnreachable Verdict = "unreachable"
	VerdictInvalid     Verdict = "invalid"
)

// ProbeMethod is the HTTP method used for a single outbound probe.
type ProbeMethod string

// Verdict classifies the outcome of a whole reachability check.
type Verdict string

// ProbeOutcome records a single outbound probe.
// StatusCode is nil when the probe failed at the transport level (DNS, connect, TLS, timeout).
type ProbeOutcome struct {
	Method     ProbeMethod
	URL        string
	StatusCode *int
	Err        error
	Latency    time.Duration
}

// ReachabilityResult is the outcome of checking one candidate URL.
type ReachabilityResult struct {
	// Input is the raw value supplied by the caller.
	Input string

	// URL is the normalized URL that was probed, empty when normalization failed.
	URL string

	Verdict  Verdict
	Attempts []ProbeOutcome
}

// Succeeded reports whether the probe received a status code in the success or redirect range.
func (o ProbeOutcome) Succeeded() bool {
	return o.StatusCode != nil && IsSuccessStatus(*o.StatusCode)
}

// Responded reports whether the probe received any HTTP response at all.
func (o ProbeOutcome) Responded() bool {
	return o.StatusCode != nil
}

// Reachable reports whether the check found the URL reachable.
func (r ReachabilityResult) Reachable() bool {
	return r.Verdict == VerdictReachable
}

// IsSuccessStatus reports whether code falls within [200, 400).
func IsSuccessStatus(code int) bool {
	return code >= 200 && code < 400
}
