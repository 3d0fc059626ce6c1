package cmd

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/urlprobe/internal/checker"
	"github.com/mozilla-ai/urlprobe/internal/cmd"
	cmdopts "github.com/mozilla-ai/urlprobe/internal/cmd/options"
	"github.com/mozilla-ai/urlprobe/internal/config"
	"github.com/mozilla-ai/urlprobe/internal/contracts"
	"github.com/mozilla-ai/urlprobe/internal/domain"
	"github.com/mozilla-ai/urlprobe/internal/printer"
)

const (
	flagFormat            = "format"
	flagVerbose           = "verbose"
	flagFailOnUnreachable = "fail-on-unreachable"
)

// CheckCmd should be used to represent the 'check' command.
type CheckCmd struct {
	*cmd.BaseCmd
	Format            cmd.OutputFormat
	Verbose           bool
	FailOnUnreachable bool
	probe             probeFlags
	cfgLoader         config.Loader
	checker           contracts.ReachabilityChecker
}

// NewCheckCmd creates a newly configured (Cobra) command.
func NewCheckCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CheckCmd{
		BaseCmd:   baseCmd,
		Format:    cmd.FormatText,
		cfgLoader: opts.ConfigLoader,
		checker:   opts.Checker,
	}

	cobraCommand := &cobra.Command{
		Use:   "check <url>",
		Short: "Checks whether a website URL is reachable",
		Long: "Checks whether a website URL is reachable, using the same GET then HEAD probe " +
			"sequence as the HTTP service. A URL without a scheme gets the default scheme prepended.",
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	allowed := cmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		flagFormat,
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)
	cobraCommand.Flags().BoolVarP(&c.Verbose, flagVerbose, "v", false, "Show every probe attempt in text output")
	cobraCommand.Flags().BoolVar(
		&c.FailOnUnreachable,
		flagFailOnUnreachable,
		false,
		"Exit with an error when the URL is invalid or unreachable",
	)

	c.probe.register(cobraCommand.Flags())

	return cobraCommand, nil
}

// run is configured (via NewCheckCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *CheckCmd) run(cobraCmd *cobra.Command, args []string) error {
	// Logs only go somewhere when a log path is configured, stderr is kept for errors.
	logger, err := c.Logger(io.Discard)
	if err != nil {
		return err
	}

	cfg, err := loadConfigFile(logger, c.cfgLoader, cobraCmd.Flags())
	if err != nil {
		return err
	}
	c.probe.applyConfig(cobraCmd.Flags(), cfg.Probe)

	chk, err := c.buildChecker(logger)
	if err != nil {
		return err
	}

	report := chk.Check(cobraCmd.Context(), args[0]).Report()

	p, err := printer.NewCheckReportPrinter(printer.WithAttempts(c.Verbose))
	if err != nil {
		return err
	}

	handler, err := cmd.NewOutputHandler[domain.CheckReport](c.Format, cobraCmd.OutOrStdout(), p)
	if err != nil {
		return err
	}

	if err := handler.HandleResults(report); err != nil {
		return err
	}

	if c.FailOnUnreachable && !report.Reachable {
		return fmt.Errorf("%s is %s", report.Input, report.Verdict)
	}

	return nil
}

func (c *CheckCmd) buildChecker(logger hclog.Logger) (contracts.ReachabilityChecker, error) {
	if c.checker != nil {
		return c.checker, nil
	}

	chk, err := checker.NewChecker(logger, c.probe.checkerOptions(nil)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create checker: %w", err)
	}

	return chk, nil
}
