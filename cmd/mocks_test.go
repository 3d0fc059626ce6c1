package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/mozilla-ai/urlprobe/internal/config"
	"github.com/mozilla-ai/urlprobe/internal/domain"
)

// fakeChecker reports every URL in reachable as reachable, every URL in invalid as invalid,
// and everything else as unreachable.
type fakeChecker struct {
	mu        sync.Mutex
	reachable map[string]bool
	invalid   map[string]bool
	checked   []string
}

func (f *fakeChecker) IsReachable(ctx context.Context, rawURL string) bool {
	return f.Check(ctx, rawURL).Reachable()
}

func (f *fakeChecker) Check(_ context.Context, rawURL string) domain.ReachabilityResult {
	f.mu.Lock()
	f.checked = append(f.checked, rawURL)
	f.mu.Unlock()

	if f.invalid[rawURL] {
		return domain.ReachabilityResult{Input: rawURL, Verdict: domain.VerdictInvalid}
	}

	target := "https://" + rawURL
	status := 503
	verdict := domain.VerdictUnreachable
	if f.reachable[rawURL] {
		status = 200
		verdict = domain.VerdictReachable
	}

	return domain.ReachabilityResult{
		Input:   rawURL,
		URL:     target,
		Verdict: verdict,
		Attempts: []domain.ProbeOutcome{
			{Method: domain.ProbeMethodGet, URL: target, StatusCode: &status},
		},
	}
}

// fakeLoader implements config.Loader for testing.
type fakeLoader struct {
	cfg   *config.Config
	err   error
	paths []string
}

func (f *fakeLoader) Load(path string) (*config.Config, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
}

// notFoundLoader behaves like the default loader when no config file exists.
func notFoundLoader() *fakeLoader {
	return &fakeLoader{err: fmt.Errorf("%w: %w", config.ErrConfigLoadFailed, config.ErrConfigNotFound)}
}

// fakeInitializer implements config.Initializer for testing.
type fakeInitializer struct {
	path string
	cfg  *config.Config
	err  error
}

func (f *fakeInitializer) Init(path string, cfg *config.Config) error {
	f.path = path
	f.cfg = cfg
	return f.err
}
