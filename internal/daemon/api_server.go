// Package daemon wires the reachability checker into an HTTP server.
package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/mozilla-ai/urlprobe/internal/api"
	"github.com/mozilla-ai/urlprobe/internal/cmd"
	"github.com/mozilla-ai/urlprobe/internal/contracts"
	"github.com/mozilla-ai/urlprobe/internal/errors"
	"github.com/mozilla-ai/urlprobe/internal/metrics"
	"github.com/mozilla-ai/urlprobe/internal/web"
)

const (
	// DebugRawBodyPath is where the raw-echo endpoint is mounted when enabled.
	DebugRawBodyPath = api.PathPrefix + "/check-url-raw"

	// MetricsPath is where Prometheus metrics are exposed.
	MetricsPath = "/metrics"

	// MCPPath is where the MCP streamable HTTP endpoint is mounted when configured.
	MCPPath = "/mcp"

	// readHeaderTimeout bounds how long a client may take to send request headers.
	readHeaderTimeout = 10 * time.Second
)

// APIServer manages the HTTP API.
// NewAPIServer should be used to create instances of APIServer.
type APIServer struct {
	// Logger for API server operations.
	logger hclog.Logger

	// Checker decides URL reachability.
	checker contracts.ReachabilityChecker

	// Metrics records request and probe instrumentation.
	metrics *metrics.Metrics

	// MCPHandler serves the MCP endpoint, nil disables it.
	mcpHandler http.Handler

	// Addr specifies the network address to bind.
	addr string

	// CORS configuration for cross-origin requests.
	cors CORSConfig

	// DebugEndpoint controls whether the raw-echo endpoint is registered.
	debugEndpoint bool

	// WebUI controls whether the bundled web page is served at the root.
	webUI bool

	// ShutdownTimeout specifies how long to wait for graceful shutdown.
	shutdownTimeout time.Duration
}

// NewAPIServer creates a new API server with the provided dependencies and options.
// Applies default options first, then user-provided options to ensure all fields have valid values.
func NewAPIServer(deps APIDependencies, opt ...APIOption) (*APIServer, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for API server: %w", err)
	}

	apiOpts, err := NewAPIOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid API options: %w", err)
	}

	return &APIServer{
		logger:          deps.Logger.Named("api"),
		checker:         deps.Checker,
		metrics:         deps.Metrics,
		mcpHandler:      apiOpts.MCPHandler,
		addr:            deps.Addr,
		cors:            apiOpts.CORS,
		debugEndpoint:   apiOpts.DebugEndpoint,
		webUI:           apiOpts.WebUI,
		shutdownTimeout: apiOpts.ShutdownTimeout,
	}, nil
}

// Handler builds the complete HTTP handler: API routes, OpenAPI docs, metrics, MCP and the web UI.
func (a *APIServer) Handler() (http.Handler, error) {
	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(a.metrics.Middleware)

	// CORS headers are only added to the API, never to metrics, MCP or static assets.
	if a.cors.Enabled {
		a.applyCORS(mux, api.PathPrefix)
	}

	config := huma.DefaultConfig(cmd.AppName+" docs", cmd.Version())
	config.CreateHooks = nil // Response bodies must stay exactly as documented, without $schema links.
	router := humachi.New(mux, config)

	// Configure the error handling wrapping.
	huma.NewErrorWithContext = errorHandler(a.logger)

	apiPathPrefix, err := api.RegisterRoutes(router, a.checker)
	if err != nil {
		return nil, fmt.Errorf("failed to register API routes: %w", err)
	}
	a.logger.Debug("Registered API routes", "prefix", apiPathPrefix)

	if a.debugEndpoint {
		api.RegisterDebugRoutes(mux, a.logger, DebugRawBodyPath)
		a.logger.Warn("Debug endpoint enabled", "path", DebugRawBodyPath)
	}

	mux.Method(http.MethodGet, MetricsPath, a.metrics.Handler())

	if a.mcpHandler != nil {
		mux.Handle(MCPPath, a.mcpHandler)
	}

	if a.webUI {
		ui, err := web.Handler()
		if err != nil {
			return nil, fmt.Errorf("failed to load web UI: %w", err)
		}
		mux.Handle("/*", ui)
	}

	return mux, nil
}

// Start starts the API server and blocks until the context is canceled or an error occurs.
func (a *APIServer) Start(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the API.
	g.Go(func() error {
		a.logger.Info("Starting API server", "address", a.addr, "prefix", api.PathPrefix)
		if a.cors.Enabled {
			a.logger.Info("CORS enabled", "origins", a.cors.AllowOrigins)
		}
		if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Handle graceful shutdown, triggered by cancellation or by the listener failing.
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down API server...")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("Graceful shutdown did not complete", "error", err)
		}
		a.logger.Info("Shutdown complete")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// applyCORS applies CORS middleware, scoped to requests under prefix, based on the configured options.
func (a *APIServer) applyCORS(mux *chi.Mux, prefix string) {
	a.logger.Info("Enabling CORS", "origins", a.cors.AllowOrigins, "prefix", prefix)

	corsOptions := cors.Options{
		AllowedOrigins:   append([]string(nil), a.cors.AllowOrigins...),
		AllowedMethods:   a.cors.AllowMethods,
		AllowedHeaders:   a.cors.AllowedHeaders,
		ExposedHeaders:   a.cors.ExposedHeaders,
		AllowCredentials: a.cors.AllowCredentials,
		MaxAge:           int(a.cors.MaxAge.Seconds()),
	}

	// Handle wildcard origins properly.
	for i, origin := range corsOptions.AllowedOrigins {
		if strings.TrimSpace(origin) == "*" {
			corsOptions.AllowedOrigins = []string{"*"}
			corsOptions.AllowCredentials = false
			break
		}
		corsOptions.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	withCORS := cors.Handler(corsOptions)
	mux.Use(func(next http.Handler) http.Handler {
		wrapped := withCORS(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasPathPrefix(r.URL.Path, prefix) {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
}

// hasPathPrefix reports whether path is prefix itself or nested below it.
func hasPathPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// mapError maps application domain errors to appropriate HTTP status codes.
//
// This function is the central place where domain errors from internal/errors are converted to HTTP responses.
// When adding new errors to internal/errors/errors.go, you MUST add them here to prevent them from falling
// through to the default case which returns HTTP 500.
//
// NOTE: Keep this function in sync with internal/errors/errors.go.
//
// Mapping guidelines:
//   - 400: Client errors (bad input, invalid requests)
//   - 4xx: Errors raised by request validation keep their status
//   - 500: Unexpected internal errors (default case)
//
// Don't forget to add test cases to TestMapError (internal/daemon/api_server_test.go).
func mapError(logger hclog.Logger, status int, msg string, err error) huma.StatusError {
	var se *api.ErrorResponse
	switch {
	case stdErrors.As(err, &se):
		return se
	case stdErrors.Is(err, errors.ErrMissingURL):
		return api.NewErrorResponse(http.StatusBadRequest, api.MessageMissingURL, err)
	case stdErrors.Is(err, errors.ErrInvalidURL):
		return api.NewErrorResponse(http.StatusBadRequest, err.Error(), err)
	case stdErrors.Is(err, errors.ErrBadRequest):
		return api.NewErrorResponse(http.StatusBadRequest, err.Error(), err)
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return api.NewErrorResponse(status, joinMessage(msg, err), err)
	default:
		logger.Error("Unexpected error handling request", "status", status, "message", msg, "error", err)
		return api.NewErrorResponse(http.StatusInternalServerError, "Internal server error", err)
	}
}

// joinMessage combines a summary with the error detail, dropping whichever is empty.
func joinMessage(msg string, err error) string {
	detail := strings.TrimSpace(err.Error())
	msg = strings.TrimSpace(msg)
	switch {
	case msg == "":
		return detail
	case detail == "":
		return msg
	default:
		return msg + ": " + detail
	}
}

// errorHandler wraps error handling for the application when converting to API friendly errors.
// It allows the logger to be supplied to functions that resolve huma.StatusError,
// and it supports different behaviors based on the variadic errors parameter.
func errorHandler(logger hclog.Logger) func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
	return func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		switch len(errs) {
		case 0:
			// No errors provided; return a generic error.
			return api.NewErrorResponse(status, msg)
		case 1:
			// Single error; map it directly.
			return mapError(logger, status, msg, errs[0])
		default:
			// Multiple errors; join them and map.
			return mapError(logger, status, msg, stdErrors.Join(errs...))
		}
	}
}
