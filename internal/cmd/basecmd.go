// Package cmd holds the building blocks shared by the urlprobe commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/urlprobe/internal/flags"
	"github.com/mozilla-ai/urlprobe/internal/perms"
)

// BaseCmd is embedded by every command to share logger construction.
type BaseCmd struct {
	logger hclog.Logger
}

// SetLogger updates the command's logger
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// Logger returns the logger for the command, creating it on first use.
// Logs are written to the --log-path file when one is configured, otherwise to fallback.
func (c *BaseCmd) Logger(fallback io.Writer) (hclog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}

	logLevel := strings.ToLower(strings.TrimSpace(flags.LogLevel))
	if logLevel == "" {
		logLevel = flags.DefaultLogLevel
	}
	if !flags.IsValidLogLevel(logLevel) {
		return nil, fmt.Errorf(
			"invalid log level '%s', must be one of %s",
			logLevel,
			strings.Join(flags.LogLevels(), ", "),
		)
	}

	output := fallback
	if output == nil {
		output = io.Discard
	}

	if logPath := strings.TrimSpace(flags.LogPath); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		output = f
	}

	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   AppName,
		Level:  hclog.LevelFromString(logLevel),
		Output: output,
	})

	return c.logger, nil
}
