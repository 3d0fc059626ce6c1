// Package checker decides whether a candidate website URL is reachable by probing it over HTTP.
package checker

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/urlprobe/internal/contracts"
	"github.com/mozilla-ai/urlprobe/internal/domain"
)

// maxDrainBytes caps how much of a response body is read so the connection can be reused.
const maxDrainBytes = 64 << 10

var _ contracts.ReachabilityChecker = (*Checker)(nil)

// Checker probes URLs with a GET request, falling back to HEAD.
// Only status codes in [200, 400) count as reachable.
// Every transport or validation failure degrades to 'unreachable', Checker never returns an error.
// NewChecker should be used to create instances of Checker.
type Checker struct {
	logger         hclog.Logger
	client         *http.Client
	recorder       contracts.ProbeRecorder
	userAgent      string
	defaultScheme  string
	schemeFallback bool
	attemptTimeout time.Duration
}

// NewChecker creates a Checker, applying defaults and then the supplied options.
// The returned Checker is safe for concurrent use.
func NewChecker(logger hclog.Logger, opt ...Option) (*Checker, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid checker options: %w", err)
	}

	client := opts.Client
	if client == nil {
		client = newHTTPClient(opts.Transport, opts.ConnectTimeout)
	}

	return &Checker{
		logger:         logger.Named("checker"),
		client:         client,
		recorder:       opts.Recorder,
		userAgent:      opts.UserAgent,
		defaultScheme:  opts.DefaultScheme,
		schemeFallback: opts.SchemeFallback,
		attemptTimeout: opts.AttemptTimeout,
	}, nil
}

// IsReachable reports whether rawURL answered a GET or HEAD probe with a 2xx or 3xx status.
func (c *Checker) IsReachable(ctx context.Context, rawURL string) bool {
	return c.Check(ctx, rawURL).Reachable()
}

// Check normalizes rawURL and probes it, returning every attempt that was made.
func (c *Checker) Check(ctx context.Context, rawURL string) (result domain.ReachabilityResult) {
	result = domain.ReachabilityResult{
		Input:   rawURL,
		Verdict: domain.VerdictUnreachable,
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Recovered from panic while checking URL", "input", rawURL, "panic", r)
			result.Verdict = domain.VerdictUnreachable
		}
		c.recorder.ObserveCheck(result.Verdict)
		c.logger.Info(
			"URL checked",
			"input", rawURL,
			"url", result.URL,
			"verdict", result.Verdict,
			"attempts", len(result.Attempts),
		)
	}()

	target, schemeOmitted, err := Normalize(rawURL, c.defaultScheme)
	if err != nil {
		c.logger.Debug("URL could not be normalized", "input", rawURL, "error", err)
		result.Verdict = domain.VerdictInvalid
		return result
	}
	result.URL = target

	attempts, ok := c.probeSequence(ctx, target)
	result.Attempts = append(result.Attempts, attempts...)
	if ok {
		result.Verdict = domain.VerdictReachable
		return result
	}

	if !c.shouldFallback(schemeOmitted, attempts) {
		return result
	}

	fallback := SchemeHTTP + strings.TrimPrefix(target, SchemeHTTPS)
	c.logger.Debug("No response over HTTPS, retrying over HTTP", "url", fallback)

	attempts, ok = c.probeSequence(ctx, fallback)
	result.Attempts = append(result.Attempts, attempts...)
	if ok {
		result.URL = fallback
		result.Verdict = domain.VerdictReachable
	}

	return result
}

// shouldFallback reports whether a plain HTTP sequence may follow a failed HTTPS one.
// It is only allowed when the caller didn't pick the scheme and HTTPS got no response at all.
func (c *Checker) shouldFallback(schemeOmitted bool, attempts []domain.ProbeOutcome) bool {
	if !c.schemeFallback || !schemeOmitted || c.defaultScheme != SchemeHTTPS {
		return false
	}

	for _, a := range attempts {
		if a.Responded() {
			return false
		}
	}

	return true
}

// probeSequence issues a GET and, unless it succeeded, a HEAD against target.
func (c *Checker) probeSequence(ctx context.Context, target string) ([]domain.ProbeOutcome, bool) {
	get := c.probe(ctx, domain.ProbeMethodGet, target)
	if get.Succeeded() {
		return []domain.ProbeOutcome{get}, true
	}

	head := c.probe(ctx, domain.ProbeMethodHead, target)
	return []domain.ProbeOutcome{get, head}, head.Succeeded()
}

// probe performs a single bounded request, it never returns an error, failures are recorded on the outcome.
func (c *Checker) probe(ctx context.Context, method domain.ProbeMethod, target string) domain.ProbeOutcome {
	outcome := domain.ProbeOutcome{
		Method: method,
		URL:    target,
	}
	defer c.observe(&outcome)

	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, string(method), target, nil)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.client.Do(req)
	outcome.Latency = time.Since(start)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	drainAndClose(resp.Body)

	status := resp.StatusCode
	outcome.StatusCode = &status

	return outcome
}

func (c *Checker) observe(outcome *domain.ProbeOutcome) {
	c.recorder.ObserveProbe(*outcome)

	switch {
	case outcome.Err != nil:
		c.logger.Debug(
			"Probe failed",
			"method", outcome.Method,
			"url", outcome.URL,
			"latency", outcome.Latency,
			"error", outcome.Err,
		)
	case outcome.StatusCode != nil:
		c.logger.Debug(
			"Probe completed",
			"method", outcome.Method,
			"url", outcome.URL,
			"status", *outcome.StatusCode,
			"latency", outcome.Latency,
		)
	}
}

func (c *Checker) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// newHTTPClient builds the shared probe client.
// Redirects are followed by the client's default policy (up to 10 hops).
func newHTTPClient(rt http.RoundTripper, connectTimeout time.Duration) *http.Client {
	if rt == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.DialContext = (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
		t.TLSHandshakeTimeout = connectTimeout
		rt = t
	}

	return &http.Client{Transport: rt}
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
	_ = body.Close()
}

type nopRecorder struct{}

func (nopRecorder) ObserveProbe(domain.ProbeOutcome) {}

func (nopRecorder) ObserveCheck(domain.Verdict) {}
