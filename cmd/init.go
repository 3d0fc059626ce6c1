package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mozilla-ai/urlprobe/internal/cmd"
	cmdopts "github.com/mozilla-ai/urlprobe/internal/cmd/options"
	"github.com/mozilla-ai/urlprobe/internal/config"
	"github.com/mozilla-ai/urlprobe/internal/daemon"
	"github.com/mozilla-ai/urlprobe/internal/flags"
)

type InitCmd struct {
	*cmd.BaseCmd
	cfgInitializer config.Initializer
}

func NewInitCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &InitCmd{
		BaseCmd:        baseCmd,
		cfgInitializer: opts.ConfigInitializer,
	}

	cobraCommand := &cobra.Command{
		Use:   "init",
		Short: "Creates a " + flags.DefaultConfigFile + " file populated with the default settings",
		Long:  c.longDescription(),
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	return cobraCommand, nil
}

func (c *InitCmd) longDescription() string {
	return fmt.Sprintf(
		"Creates a %s configuration file in the current directory, populated with the default settings "+
			"used by the serve and check commands.\n\n"+
			"The configuration file path can be overridden using the `--%s` flag or the `%s` environment variable",
		flags.DefaultConfigFile,
		flags.FlagNameConfigFile,
		flags.EnvVarConfigFile,
	)
}

func (c *InitCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger(io.Discard)
	if err != nil {
		return err
	}

	var initFilePath string

	// If the config file flag just has the default value, we're expecting to create it in the current working directory.
	if flags.ConfigFile == flags.DefaultConfigFile {
		if _, err := fmt.Fprintf(
			cobraCmd.OutOrStdout(),
			"📄 Using default config file: '%s' in the current directory\n", flags.DefaultConfigFile,
		); err != nil {
			return err
		}
		cwd, err := os.Getwd()
		if err != nil {
			logger.Error("Failed to get working directory", "error", err)
			return fmt.Errorf("error getting current directory: %w", err)
		}
		initFilePath = filepath.Join(cwd, flags.DefaultConfigFile)
	} else {
		initFilePath = flags.ConfigFile
	}

	if err := c.cfgInitializer.Init(initFilePath, defaultConfig()); err != nil {
		logger.Error("Config initialization failed", "error", err)
		return fmt.Errorf("error initializing config file: %w", err)
	}

	if _, err := fmt.Fprintf(
		cobraCmd.OutOrStdout(),
		"✅ Config file created: %s\n", initFilePath,
	); err != nil {
		return err
	}

	return nil
}

// defaultConfig returns a config holding the same values the serve and check flags default to.
func defaultConfig() *config.Config {
	addr := daemon.DefaultAPIAddr()
	debugEndpoint := false
	shutdown := config.Duration(daemon.DefaultAPIShutdownTimeout())

	corsEnable := daemon.DefaultCORSEnabled()
	corsCredentials := daemon.DefaultCORSAllowCredentials()
	corsMaxAge := config.Duration(daemon.DefaultCORSMaxAge())

	var probe probeFlags
	probe.register(pflag.NewFlagSet("defaults", pflag.ContinueOnError))

	return &config.Config{
		API: &config.APIConfigSection{
			Addr:          &addr,
			DebugEndpoint: &debugEndpoint,
			Timeout: &config.APITimeoutConfigSection{
				Shutdown: &shutdown,
			},
			CORS: &config.CORSConfigSection{
				Enable:      &corsEnable,
				Origins:     daemon.DefaultCORSAllowOrigins(),
				Methods:     daemon.DefaultCORSAllowMethods(),
				Headers:     daemon.DefaultCORSAllowHeaders(),
				Credentials: &corsCredentials,
				MaxAge:      &corsMaxAge,
			},
		},
		Probe: probe.probeConfig(),
	}
}
