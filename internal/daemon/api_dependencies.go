package daemon

import (
	"fmt"
	"net"
	"reflect"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/urlprobe/internal/contracts"
	"github.com/mozilla-ai/urlprobe/internal/metrics"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8080").
	Addr string

	// Checker decides URL reachability.
	Checker contracts.ReachabilityChecker

	// Logger for API server operations.
	Logger hclog.Logger

	// Metrics records request instrumentation and serves the scrape endpoint.
	Metrics *metrics.Metrics
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	checker contracts.ReachabilityChecker,
	m *metrics.Metrics,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:    addr,
		Checker: checker,
		Logger:  logger,
		Metrics: m,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := IsValidAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Checker == nil || reflect.ValueOf(d.Checker).IsNil() {
		return fmt.Errorf("checker cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	if d.Metrics == nil {
		return fmt.Errorf("metrics cannot be nil")
	}
	return nil
}

// IsValidAddr checks if the address is a valid "host:port" string.
// An empty host binds all interfaces, named ports are resolved.
func IsValidAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %w", err)
	}

	if port == "" {
		return fmt.Errorf("address missing port")
	}

	if _, err := strconv.Atoi(port); err != nil {
		if _, err := net.LookupPort("tcp", port); err != nil {
			return fmt.Errorf("invalid address port: %s", port)
		}
	}

	return nil
}
