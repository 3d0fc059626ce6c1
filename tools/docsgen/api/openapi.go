//go:build docsgen_api

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/urlprobe/internal/api"
	"github.com/mozilla-ai/urlprobe/internal/cmd"
	"github.com/mozilla-ai/urlprobe/internal/domain"
	"github.com/mozilla-ai/urlprobe/internal/perms"
)

// stubChecker satisfies the route dependencies, its results are never used.
type stubChecker struct{}

func (stubChecker) IsReachable(context.Context, string) bool { return false }

func (stubChecker) Check(_ context.Context, rawURL string) domain.ReachabilityResult {
	return domain.ReachabilityResult{Input: rawURL, Verdict: domain.VerdictUnreachable}
}

// main generates the OpenAPI document for the urlprobe API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   cmd.AppName + ".docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Output path for the OpenAPI document, relative to the repository root.
	outputPath := "./docs/api/openapi.yaml"

	// Same router setup as the API server.
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	config := huma.DefaultConfig(cmd.AppName+" docs", cmd.Version())
	config.CreateHooks = nil
	router := humachi.New(mux, config)

	apiPathPrefix, err := api.RegisterRoutes(router, stubChecker{})
	if err != nil {
		logger.Error("failed to register API routes", "error", err)
		os.Exit(1)
	}

	logger.Info("Routes registered", "prefix", apiPathPrefix)

	yamlBytes, err := router.OpenAPI().YAML()
	if err != nil {
		logger.Error("failed to generate OpenAPI YAML", "error", err)
		os.Exit(1)
	}

	docsDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(docsDir, perms.RegularDir); err != nil {
		logger.Error("failed to create docs directory", "path", docsDir, "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, yamlBytes, perms.RegularFile); err != nil {
		logger.Error("failed to write OpenAPI document", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI document generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}
