package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mozilla-ai/urlprobe/internal/checker"
	"github.com/mozilla-ai/urlprobe/internal/cmd"
	cmdopts "github.com/mozilla-ai/urlprobe/internal/cmd/options"
	"github.com/mozilla-ai/urlprobe/internal/config"
	"github.com/mozilla-ai/urlprobe/internal/contracts"
	"github.com/mozilla-ai/urlprobe/internal/daemon"
	"github.com/mozilla-ai/urlprobe/internal/flags"
	"github.com/mozilla-ai/urlprobe/internal/mcptool"
	"github.com/mozilla-ai/urlprobe/internal/metrics"
)

const (
	flagAddr               = "addr"
	flagDev                = "dev"
	flagDebugEndpoint      = "debug-endpoint"
	flagWebUI              = "web-ui"
	flagMCP                = "mcp"
	flagTimeoutAPIShutdown = "timeout-api-shutdown"
	flagCORSEnable         = "cors-enable"
	flagCORSOrigins        = "cors-origins"
	flagCORSMethods        = "cors-methods"
	flagCORSHeaders        = "cors-headers"
	flagCORSCredentials    = "cors-credentials"
	flagCORSMaxAge         = "cors-max-age"

	devAddr = "localhost:8080"
)

// ServeCmd should be used to represent the 'serve' command.
type ServeCmd struct {
	*cmd.BaseCmd
	Dev             bool
	Addr            string
	DebugEndpoint   bool
	WebUI           bool
	MCP             bool
	ShutdownTimeout time.Duration
	CORSEnable      bool
	CORSOrigins     []string
	CORSMethods     []string
	CORSHeaders     []string
	CORSCredentials bool
	CORSMaxAge      time.Duration
	probe           probeFlags
	cfgLoader       config.Loader
	checker         contracts.ReachabilityChecker
}

// NewServeCmd creates a newly configured (Cobra) command.
func NewServeCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ServeCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
		checker:   opts.Checker,
	}

	cobraCommand := &cobra.Command{
		Use:   "serve [--dev] [--addr]",
		Short: "Runs the URL check HTTP service",
		Long: "Runs the URL check HTTP service: the JSON API under /api, OpenAPI docs at /docs, " +
			"Prometheus metrics at /metrics, an MCP endpoint at /mcp and a small web page at /",
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	c.registerFlags(cobraCommand)

	return cobraCommand, nil
}

// registerFlags binds the serve flags, including the shared probe flags, to the command's fields.
func (c *ServeCmd) registerFlags(cobraCommand *cobra.Command) {
	fs := cobraCommand.Flags()

	fs.BoolVar(&c.Dev, flagDev, false, "Run in development-focused mode (binds "+devAddr+", prints a banner)")
	fs.StringVar(&c.Addr, flagAddr, daemon.DefaultAPIAddr(), "Address for the API server to bind")
	cobraCommand.MarkFlagsMutuallyExclusive(flagDev, flagAddr)

	fs.BoolVar(&c.DebugEndpoint, flagDebugEndpoint, false, "Register the raw-echo endpoint at "+daemon.DebugRawBodyPath)
	fs.BoolVar(&c.WebUI, flagWebUI, true, "Serve the web page at /")
	fs.BoolVar(&c.MCP, flagMCP, true, "Serve the MCP endpoint at "+daemon.MCPPath)
	fs.DurationVar(
		&c.ShutdownTimeout,
		flagTimeoutAPIShutdown,
		daemon.DefaultAPIShutdownTimeout(),
		"Maximum time to wait for in-flight requests when shutting down",
	)

	fs.BoolVar(&c.CORSEnable, flagCORSEnable, daemon.DefaultCORSEnabled(), "Add CORS headers to /api responses")
	fs.StringSliceVar(&c.CORSOrigins, flagCORSOrigins, daemon.DefaultCORSAllowOrigins(), "Allowed CORS origins")
	fs.StringSliceVar(&c.CORSMethods, flagCORSMethods, daemon.DefaultCORSAllowMethods(), "Allowed CORS methods")
	fs.StringSliceVar(&c.CORSHeaders, flagCORSHeaders, daemon.DefaultCORSAllowHeaders(), "Allowed CORS request headers")
	fs.BoolVar(
		&c.CORSCredentials,
		flagCORSCredentials,
		daemon.DefaultCORSAllowCredentials(),
		"Allow credentials in CORS requests (ignored when any origin is '*')",
	)
	fs.DurationVar(&c.CORSMaxAge, flagCORSMaxAge, daemon.DefaultCORSMaxAge(), "How long browsers may cache preflights")

	c.probe.register(fs)
}

// run is configured (via NewServeCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *ServeCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger(cobraCmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, err := loadConfigFile(logger, c.cfgLoader, cobraCmd.Flags())
	if err != nil {
		return err
	}
	c.applyConfig(cobraCmd.Flags(), cfg)

	addr := strings.TrimSpace(c.Addr)

	// Override address for dev mode.
	if c.Dev {
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	if err := daemon.IsValidAddr(addr); err != nil {
		return fmt.Errorf("invalid --%s '%s': %w", flagAddr, addr, err)
	}

	m := metrics.New()

	chk, err := c.buildChecker(logger, m)
	if err != nil {
		return err
	}

	apiOpts, err := c.apiOptions(logger, chk)
	if err != nil {
		return err
	}

	deps, err := daemon.NewAPIDependencies(logger, chk, m, addr)
	if err != nil {
		return err
	}

	srv, err := daemon.NewAPIServer(deps, apiOpts...)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	// Create the signal handling context for the application.
	ctx, cancel := signal.NotifyContext(cobraCmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Print --dev mode banner if required.
	if c.Dev {
		banner := fmt.Sprintf("%s running in 'dev' mode.\n\n"+
			"  Web UI:\thttp://%s/\n"+
			"  Local API:\thttp://%s/api\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Metrics:\thttp://%s%s\n"+
			"  Config file:\t%s\n",
			cmd.AppName, addr, addr, addr, addr, daemon.MetricsPath, flags.ConfigFile)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += "\nPress Ctrl+C to stop.\n\n"
		_, _ = fmt.Fprint(cobraCmd.OutOrStdout(), banner)
	}

	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("API server exited with error", "error", err)
		return err
	}

	logger.Info("Server stopped")

	return nil
}

// applyConfig copies values from the config file onto flags the user did not set explicitly.
func (c *ServeCmd) applyConfig(fs *pflag.FlagSet, cfg *config.Config) {
	if cfg == nil {
		return
	}

	c.probe.applyConfig(fs, cfg.Probe)

	apiCfg := cfg.API
	if apiCfg == nil {
		return
	}

	if apiCfg.Addr != nil && !fs.Changed(flagAddr) && !fs.Changed(flagDev) {
		c.Addr = *apiCfg.Addr
	}
	if apiCfg.DebugEndpoint != nil && !fs.Changed(flagDebugEndpoint) {
		c.DebugEndpoint = *apiCfg.DebugEndpoint
	}
	if apiCfg.Timeout != nil && apiCfg.Timeout.Shutdown != nil && !fs.Changed(flagTimeoutAPIShutdown) {
		c.ShutdownTimeout = time.Duration(*apiCfg.Timeout.Shutdown)
	}

	corsCfg := apiCfg.CORS
	if corsCfg == nil {
		return
	}

	if corsCfg.Enable != nil && !fs.Changed(flagCORSEnable) {
		c.CORSEnable = *corsCfg.Enable
	}
	if len(corsCfg.Origins) > 0 && !fs.Changed(flagCORSOrigins) {
		c.CORSOrigins = corsCfg.Origins
	}
	if len(corsCfg.Methods) > 0 && !fs.Changed(flagCORSMethods) {
		c.CORSMethods = corsCfg.Methods
	}
	if len(corsCfg.Headers) > 0 && !fs.Changed(flagCORSHeaders) {
		c.CORSHeaders = corsCfg.Headers
	}
	if corsCfg.Credentials != nil && !fs.Changed(flagCORSCredentials) {
		c.CORSCredentials = *corsCfg.Credentials
	}
	if corsCfg.MaxAge != nil && !fs.Changed(flagCORSMaxAge) {
		c.CORSMaxAge = time.Duration(*corsCfg.MaxAge)
	}
}

func (c *ServeCmd) buildChecker(logger hclog.Logger, recorder contracts.ProbeRecorder) (contracts.ReachabilityChecker, error) {
	if c.checker != nil {
		return c.checker, nil
	}

	chk, err := checker.NewChecker(logger, c.probe.checkerOptions(recorder)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create checker: %w", err)
	}

	return chk, nil
}

func (c *ServeCmd) apiOptions(logger hclog.Logger, chk contracts.ReachabilityChecker) ([]daemon.APIOption, error) {
	opts := []daemon.APIOption{
		daemon.WithShutdownTimeout(c.ShutdownTimeout),
		daemon.WithDebugEndpoint(c.DebugEndpoint),
		daemon.WithWebUI(c.WebUI),
		daemon.WithCORSEnabled(c.CORSEnable),
		daemon.WithCORSAllowOrigins(c.CORSOrigins),
		daemon.WithCORSAllowMethods(c.CORSMethods),
		daemon.WithCORSAllowHeaders(c.CORSHeaders),
		daemon.WithCORSAllowCredentials(c.CORSCredentials),
		daemon.WithCORSMaxAge(c.CORSMaxAge),
	}

	if c.MCP {
		s, err := mcptool.NewServer(logger, chk, cmd.AppName, cmd.Version())
		if err != nil {
			return nil, fmt.Errorf("failed to create MCP server: %w", err)
		}
		opts = append(opts, daemon.WithMCPHandler(mcptool.NewHTTPHandler(s)))
	}

	return opts, nil
}
