package cmd

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/mozilla-ai/urlprobe/internal/config"
	"github.com/mozilla-ai/urlprobe/internal/flags"
)

// loadConfigFile loads the configuration file named by --config-file.
// A missing file is only an error when the path was chosen explicitly, otherwise an empty config is returned.
func loadConfigFile(logger hclog.Logger, loader config.Loader, globalFlags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := loader.Load(flags.ConfigFile)
	switch {
	case err == nil:
		logger.Info("Loaded config file", "path", cfg.Path())
		return cfg, nil
	case errors.Is(err, config.ErrConfigNotFound) && !flags.ConfigFileChanged(globalFlags):
		logger.Debug("No config file found, using flags and defaults", "path", flags.ConfigFile)
		return &config.Config{}, nil
	default:
		return nil, fmt.Errorf("error loading config file: %w", err)
	}
}
