package api

import (
	"context"
	"sync"

	"github.com/mozilla-ai/urlprobe/internal/domain"
)

// mockChecker returns a fixed verdict and records what it was asked.
type mockChecker struct {
	mu        sync.Mutex
	reachable bool
	urls      []string
	ctxErrs   []error
}

func (m *mockChecker) IsReachable(ctx context.Context, rawURL string) bool {
	return m.Check(ctx, rawURL).Reachable()
}

func (m *mockChecker) Check(ctx context.Context, rawURL string) domain.ReachabilityResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.urls = append(m.urls, rawURL)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())

	verdict := domain.VerdictUnreachable
	if m.reachable {
		verdict = domain.VerdictReachable
	}

	return domain.ReachabilityResult{Input: rawURL, URL: "https://" + rawURL, Verdict: verdict}
}
