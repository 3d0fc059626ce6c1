package api

import (
	"fmt"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/urlprobe/internal/contracts"
)

// PathPrefix is the prefix shared by all API routes.
const PathPrefix = "/api"

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix under which the routes are created.
func RegisterRoutes(router huma.API, checker contracts.ReachabilityChecker) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if checker == nil || reflect.ValueOf(checker).IsNil() {
		return "", fmt.Errorf("checker cannot be nil")
	}

	group := huma.NewGroup(router, PathPrefix)
	RegisterHealthRoutes(group, "/health")
	RegisterCheckRoutes(group, checker, "/check-url")

	return PathPrefix, nil
}
