// Package config loads the optional urlprobe configuration file.
//
// Every setting is optional. Values left unset in the file fall back to the corresponding CLI flag defaults,
// and explicitly provided CLI flags always win over the file.
package config

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/mozilla-ai/urlprobe/internal/perms"
)

// Config represents the contents of a .urlprobe.toml file.
//
// NOTE: if you add/remove fields you must review the associated Validate implementations
// and the flag overrides in cmd/serve.go.
type Config struct {
	// API server configuration (address, timeouts, CORS)
	API *APIConfigSection `json:"api,omitempty" toml:"api,omitempty" yaml:"api,omitempty"`

	// Outbound probe configuration
	Probe *ProbeConfigSection `json:"probe,omitempty" toml:"probe,omitempty" yaml:"probe,omitempty"`

	configFilePath string
}

// APIConfigSection contains API server configuration settings.
type APIConfigSection struct {
	// Address to bind the API server (e.g., "0.0.0.0:8080")
	// Maps to CLI flag --addr
	Addr *string `json:"addr,omitempty" toml:"addr,omitempty" yaml:"addr,omitempty"`

	// Whether the raw-echo debug endpoint is registered
	// Maps to CLI flag --debug-endpoint
	DebugEndpoint *bool `json:"debugEndpoint,omitempty" toml:"debug_endpoint,omitempty" yaml:"debug_endpoint,omitempty"`

	// Nested timeout configuration for API operations
	Timeout *APITimeoutConfigSection `json:"timeout,omitempty" toml:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Nested CORS configuration for cross-origin requests
	CORS *CORSConfigSection `json:"cors,omitempty" toml:"cors,omitempty" yaml:"cors,omitempty"`
}

// APITimeoutConfigSection contains timeout settings for API operations.
type APITimeoutConfigSection struct {
	// Shutdown timeout for graceful API server shutdown
	// Maps to CLI flag --timeout-api-shutdown
	Shutdown *Duration `json:"shutdown,omitempty" toml:"shutdown,omitempty" yaml:"shutdown,omitempty"`
}

// CORSConfigSection contains Cross-Origin Resource Sharing (CORS) configuration.
type CORSConfigSection struct {
	// Enable CORS support
	// Maps to CLI flag --cors-enable
	Enable *bool `json:"enable,omitempty" toml:"enable,omitempty" yaml:"enable,omitempty"`

	// Allowed origins for CORS requests
	// Maps to CLI flag --cors-origins
	Origins []string `json:"allowOrigins,omitempty" toml:"allow_origins,omitempty" yaml:"allow_origins,omitempty"`

	// Allowed HTTP methods for CORS requests
	// Maps to CLI flag --cors-methods
	Methods []string `json:"allowMethods,omitempty" toml:"allow_methods,omitempty" yaml:"allow_methods,omitempty"`

	// Allowed headers for CORS requests
	// Maps to CLI flag --cors-headers
	Headers []string `json:"allowHeaders,omitempty" toml:"allow_headers,omitempty" yaml:"allow_headers,omitempty"`

	// Allow credentials in CORS requests
	// Maps to CLI flag --cors-credentials
	Credentials *bool `json:"allowCredentials,omitempty" toml:"allow_credentials,omitempty" yaml:"allow_credentials,omitempty"`

	// Maximum age for CORS preflight cache
	// Maps to CLI flag --cors-max-age
	MaxAge *Duration `json:"maxAge,omitempty" toml:"max_age,omitempty" yaml:"max_age,omitempty"`
}

// ProbeConfigSection contains settings for the outbound reachability probes.
type ProbeConfigSection struct {
	// Scheme prepended to URLs that omit one ("http" or "https")
	// Maps to CLI flag --default-scheme
	DefaultScheme *string `json:"defaultScheme,omitempty" toml:"default_scheme,omitempty" yaml:"default_scheme,omitempty"`

	// Retry over plain HTTP when HTTPS got no response for a scheme-less URL
	// Maps to CLI flag --scheme-fallback
	SchemeFallback *bool `json:"schemeFallback,omitempty" toml:"scheme_fallback,omitempty" yaml:"scheme_fallback,omitempty"`

	// User-Agent header sent with each probe
	// Maps to CLI flag --user-agent
	UserAgent *string `json:"userAgent,omitempty" toml:"user_agent,omitempty" yaml:"user_agent,omitempty"`

	// Nested timeout configuration for probes
	Timeout *ProbeTimeoutConfigSection `json:"timeout,omitempty" toml:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ProbeTimeoutConfigSection contains timeout settings for outbound probes.
type ProbeTimeoutConfigSection struct {
	// Upper bound of each GET or HEAD attempt
	// Maps to CLI flag --timeout-probe
	Attempt *Duration `json:"attempt,omitempty" toml:"attempt,omitempty" yaml:"attempt,omitempty"`

	// Dial and TLS handshake timeout
	// Maps to CLI flag --timeout-connect
	Connect *Duration `json:"connect,omitempty" toml:"connect,omitempty" yaml:"connect,omitempty"`
}

// Loader loads configuration from a file path.
type Loader interface {
	Load(path string) (*Config, error)
}

// Initializer creates a new configuration file.
type Initializer interface {
	Init(path string, cfg *Config) error
}

// DefaultLoader loads and writes TOML configuration files.
type DefaultLoader struct{}

// Load reads, decodes and validates the configuration file at path.
// A missing file is reported with an error wrapping ErrConfigNotFound so callers can decide whether it matters.
func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w (%s)", ErrConfigLoadFailed, ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	cfg.configFilePath = path

	return &cfg, nil
}

// Init writes cfg to a new file at path, it refuses to overwrite an existing file.
func (d *DefaultLoader) Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if cfg == nil {
		cfg = &Config{}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid config: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Path returns the file this configuration was loaded from, empty if it was not loaded from disk.
func (c *Config) Path() string {
	return c.configFilePath
}

// Validate implements validation.Validatable.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.API),
		validation.Field(&c.Probe),
	)
}

// Validate implements validation.Validatable.
func (a *APIConfigSection) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Addr, validation.By(validateHostPort)),
		validation.Field(&a.Timeout),
		validation.Field(&a.CORS),
	)
}

// Validate implements validation.Validatable.
func (t *APITimeoutConfigSection) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Shutdown, validation.By(positiveDuration)),
	)
}

// Validate implements validation.Validatable.
func (c *CORSConfigSection) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Origins, validation.Each(validation.Required, validation.By(validateOrigin))),
		validation.Field(&c.Methods, validation.Each(validation.Required, is.UpperCase)),
		validation.Field(&c.Headers, validation.Each(validation.Required)),
		validation.Field(&c.MaxAge, validation.By(nonNegativeDuration)),
	)
}

// Validate implements validation.Validatable.
func (p *ProbeConfigSection) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.DefaultScheme, validation.In("http", "https")),
		validation.Field(&p.UserAgent, validation.By(notBlank)),
		validation.Field(&p.Timeout),
	)
}

// Validate implements validation.Validatable.
func (t *ProbeTimeoutConfigSection) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Attempt, validation.By(positiveDuration)),
		validation.Field(&t.Connect, validation.By(positiveDuration)),
	)
}

func validateHostPort(value any) error {
	addr, ok := value.(*string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if addr == nil {
		return nil
	}

	host, port, err := net.SplitHostPort(*addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if err := is.Port.Validate(port); err != nil {
		return validation.NewError("validation_invalid_port", "invalid port")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateOrigin(value any) error {
	origin, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	origin = strings.TrimSpace(origin)
	if origin == "*" {
		return nil
	}

	return is.URL.Validate(origin)
}

func positiveDuration(value any) error {
	d, ok := value.(*Duration)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a duration")
	}
	if d != nil && time.Duration(*d) <= 0 {
		return validation.NewError("validation_invalid_duration", "must be positive")
	}
	return nil
}

func nonNegativeDuration(value any) error {
	d, ok := value.(*Duration)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a duration")
	}
	if d != nil && time.Duration(*d) < 0 {
		return validation.NewError("validation_invalid_duration", "cannot be negative")
	}
	return nil
}

func notBlank(value any) error {
	s, ok := value.(*string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if s != nil && strings.TrimSpace(*s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
}
