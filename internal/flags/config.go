// Package flags holds the global flags shared by every urlprobe command.
// Environment variables seed the flag defaults, so an explicit flag always wins.
package flags

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarConfigFile = "URLPROBE_CONFIG_FILE"
	EnvVarLogPath    = "URLPROBE_LOG_PATH"
	EnvVarLogLevel   = "URLPROBE_LOG_LEVEL"

	// Defaults
	DefaultConfigFile = ".urlprobe.toml"
	DefaultLogPath    = ""
	DefaultLogLevel   = "info"

	// Flag names
	FlagNameConfigFile = "config-file"
	FlagNameLogPath    = "log-path"
	FlagNameLogLevel   = "log-level"
)

var (
	ConfigFile string
	LogPath    string
	LogLevel   string
)

// InitFlags registers the global flags on fs.
func InitFlags(fs *pflag.FlagSet) {
	initConfigFile(fs)
	initLogger(fs)
}

// LogLevels returns the accepted values for --log-level.
func LogLevels() []string {
	return []string{"trace", "debug", "info", "warn", "error", "off"}
}

// IsValidLogLevel reports whether level is one of LogLevels, ignoring case and surrounding space.
func IsValidLogLevel(level string) bool {
	return slices.Contains(LogLevels(), strings.ToLower(strings.TrimSpace(level)))
}

// ConfigFileChanged reports whether the config file was chosen explicitly,
// either with the flag or the environment variable, rather than falling back to the default.
func ConfigFileChanged(fs *pflag.FlagSet) bool {
	if f := fs.Lookup(FlagNameConfigFile); f != nil && f.Changed {
		return true
	}
	return strings.TrimSpace(os.Getenv(EnvVarConfigFile)) != ""
}

func initConfigFile(fs *pflag.FlagSet) {
	if ConfigFile == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarConfigFile)); env != "" {
			ConfigFile = env
		} else {
			ConfigFile = DefaultConfigFile
		}
	}
	fs.StringVar(&ConfigFile, FlagNameConfigFile, ConfigFile, "path to config file")
}

func initLogger(fs *pflag.FlagSet) {
	if LogPath == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogPath)); env != "" {
			LogPath = env
		} else {
			LogPath = DefaultLogPath
		}
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to generated log file")

	if LogLevel == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogLevel)); env != "" {
			LogLevel = strings.ToLower(env)
		} else {
			LogLevel = DefaultLogLevel
		}
	}
	fs.StringVar(
		&LogLevel,
		FlagNameLogLevel,
		LogLevel,
		"log level for urlprobe logs ("+strings.Join(LogLevels(), ", ")+")",
	)
}
