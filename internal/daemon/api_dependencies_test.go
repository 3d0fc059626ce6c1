package daemon

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/urlprobe/internal/domain"
	"github.com/mozilla-ai/urlprobe/internal/metrics"
)

// mockChecker returns a fixed verdict, or panics when asked to.
type mockChecker struct {
	reachable bool
	panics    bool
	calls     atomic.Int32
}

func (m *mockChecker) IsReachable(ctx context.Context, rawURL string) bool {
	return m.Check(ctx, rawURL).Reachable()
}

func (m *mockChecker) Check(_ context.Context, rawURL string) domain.ReachabilityResult {
	m.calls.Add(1)
	if m.panics {
		panic("checker exploded")
	}

	verdict := domain.VerdictUnreachable
	if m.reachable {
		verdict = domain.VerdictReachable
	}

	return domain.ReachabilityResult{Input: rawURL, Verdict: verdict}
}

func TestDaemon_NewAPIDependencies(t *testing.T) {
	t.Parallel()

	deps, err := NewAPIDependencies(hclog.NewNullLogger(), &mockChecker{}, metrics.New(), "localhost:8080")
	require.NoError(t, err)
	require.Equal(t, "localhost:8080", deps.Addr)

	_, err = NewAPIDependencies(hclog.NewNullLogger(), nil, metrics.New(), "localhost:8080")
	require.EqualError(t, err, "checker cannot be nil")
}

func TestDaemon_APIDependencies_Validate(t *testing.T) {
	t.Parallel()

	var nilChecker *mockChecker

	tests := []struct {
		name    string
		deps    APIDependencies
		wantErr string
	}{
		{
			name: "valid dependencies",
			deps: APIDependencies{
				Logger:  hclog.NewNullLogger(),
				Checker: &mockChecker{},
				Metrics: metrics.New(),
				Addr:    "localhost:8080",
			},
		},
		{
			name: "empty host binds all interfaces",
			deps: APIDependencies{
				Logger:  hclog.NewNullLogger(),
				Checker: &mockChecker{},
				Metrics: metrics.New(),
				Addr:    ":8080",
			},
		},
		{
			name: "nil logger",
			deps: APIDependencies{
				Logger:  nil,
				Checker: &mockChecker{},
				Metrics: metrics.New(),
				Addr:    "localhost:8080",
			},
			wantErr: "logger cannot be nil",
		},
		{
			name: "nil checker",
			deps: APIDependencies{
				Logger:  hclog.NewNullLogger(),
				Checker: nil,
				Metrics: metrics.New(),
				Addr:    "localhost:8080",
			},
			wantErr: "checker cannot be nil",
		},
		{
			name: "typed nil checker",
			deps: APIDependencies{
				Logger:  hclog.NewNullLogger(),
				Checker: nilChecker,
				Metrics: metrics.New(),
				Addr:    "localhost:8080",
			},
			wantErr: "checker cannot be nil",
		},
		{
			name: "nil metrics",
			deps: APIDependencies{
				Logger:  hclog.NewNullLogger(),
				Checker: &mockChecker{},
				Metrics: nil,
				Addr:    "localhost:8080",
			},
			wantErr: "metrics cannot be nil",
		},
		{
			name: "invalid address",
			deps: APIDependencies{
				Logger:  hclog.NewNullLogger(),
				Checker: &mockChecker{},
				Metrics: metrics.New(),
				Addr:    "invalid-address",
			},
			wantErr: "invalid API address 'invalid-address': invalid address format: address invalid-address: missing port in address",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.deps.Validate()

			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				require.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

func TestDaemon_IsValidAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "host and port", addr: "localhost:8080"},
		{name: "ip and port", addr: "127.0.0.1:8080"},
		{name: "ipv6 and port", addr: "[::1]:8080"},
		{name: "no host", addr: ":8080"},
		{name: "named port", addr: "localhost:http"},
		{name: "missing port", addr: "localhost", wantErr: true},
		{name: "empty port", addr: "localhost:", wantErr: true},
		{name: "unknown named port", addr: "localhost:not-a-port", wantErr: true},
		{name: "empty", addr: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := IsValidAddr(tc.addr)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
