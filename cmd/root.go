package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/urlprobe/internal/cmd"
	cmdopts "github.com/mozilla-ai/urlprobe/internal/cmd/options"
	"github.com/mozilla-ai/urlprobe/internal/flags"
)

// envFile is loaded into the process environment before flags are parsed, when present.
const envFile = ".env"

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the root command and runs it against the process arguments.
func Execute() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	rootCmd, err := NewRootCmd(&RootCmd{BaseCmd: &cmd.BaseCmd{}})
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

// NewRootCmd wires the global flags and every subcommand, passing opt through to each of them.
func NewRootCmd(c *RootCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	if c == nil {
		return nil, fmt.Errorf("root command cannot be nil")
	}
	if c.BaseCmd == nil {
		c.BaseCmd = &cmd.BaseCmd{}
	}

	rootCmd := &cobra.Command{
		Use:           cmd.AppName + " <command> [args]",
		Short:         "'" + cmd.AppName + "' checks whether website URLs are reachable.",
		Long:          c.longDescription(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       cmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	fns := []func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error){
		NewServeCmd,
		NewCheckCmd,
		NewInitCmd,
	}

	for _, fn := range fns {
		tempCmd, err := fn(c.BaseCmd, opt...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(tempCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return fmt.Sprintf(`The '%[1]s' CLI checks whether website URLs respond to HTTP(S) requests.

Use '%[1]s check' to probe URLs from the terminal, or '%[1]s serve' to run the HTTP service
that exposes the same check as a JSON API, an MCP tool and a small web page.`, cmd.AppName)
}
