package cmd

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/mozilla-ai/urlprobe/internal/checker"
	"github.com/mozilla-ai/urlprobe/internal/config"
	"github.com/mozilla-ai/urlprobe/internal/contracts"
)

const (
	flagDefaultScheme  = "default-scheme"
	flagSchemeFallback = "scheme-fallback"
	flagUserAgent      = "user-agent"
	flagTimeoutProbe   = "timeout-probe"
	flagTimeoutConnect = "timeout-connect"
)

// probeFlags holds the outbound probe settings shared by the serve and check commands.
type probeFlags struct {
	defaultScheme  string
	schemeFallback bool
	userAgent      string
	attemptTimeout time.Duration
	connectTimeout time.Duration
}

func (p *probeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(
		&p.defaultScheme,
		flagDefaultScheme,
		checker.DefaultScheme(),
		"Scheme prepended to URLs that omit one (http or https)",
	)
	fs.BoolVar(
		&p.schemeFallback,
		flagSchemeFallback,
		checker.DefaultSchemeFallback(),
		"Retry over http when https got no response for a URL given without a scheme",
	)
	fs.StringVar(
		&p.userAgent,
		flagUserAgent,
		checker.DefaultUserAgent(),
		"User-Agent header sent with each probe",
	)
	fs.DurationVar(
		&p.attemptTimeout,
		flagTimeoutProbe,
		checker.DefaultAttemptTimeout(),
		"Upper bound of each GET or HEAD probe",
	)
	fs.DurationVar(
		&p.connectTimeout,
		flagTimeoutConnect,
		checker.DefaultConnectTimeout(),
		"Dial and TLS handshake timeout for probes",
	)
}

// applyConfig copies values from the config file onto flags the user did not set explicitly.
func (p *probeFlags) applyConfig(fs *pflag.FlagSet, cfg *config.ProbeConfigSection) {
	if cfg == nil {
		return
	}

	if cfg.DefaultScheme != nil && !fs.Changed(flagDefaultScheme) {
		p.defaultScheme = *cfg.DefaultScheme
	}
	if cfg.SchemeFallback != nil && !fs.Changed(flagSchemeFallback) {
		p.schemeFallback = *cfg.SchemeFallback
	}
	if cfg.UserAgent != nil && !fs.Changed(flagUserAgent) {
		p.userAgent = *cfg.UserAgent
	}
	if cfg.Timeout != nil {
		if cfg.Timeout.Attempt != nil && !fs.Changed(flagTimeoutProbe) {
			p.attemptTimeout = time.Duration(*cfg.Timeout.Attempt)
		}
		if cfg.Timeout.Connect != nil && !fs.Changed(flagTimeoutConnect) {
			p.connectTimeout = time.Duration(*cfg.Timeout.Connect)
		}
	}
}

// checkerOptions converts the flags into checker options, recording probes with recorder when it is not nil.
func (p *probeFlags) checkerOptions(recorder contracts.ProbeRecorder) []checker.Option {
	opts := []checker.Option{
		checker.WithDefaultScheme(p.defaultScheme),
		checker.WithSchemeFallback(p.schemeFallback),
		checker.WithUserAgent(p.userAgent),
		checker.WithAttemptTimeout(p.attemptTimeout),
		checker.WithConnectTimeout(p.connectTimeout),
	}
	if recorder != nil {
		opts = append(opts, checker.WithRecorder(recorder))
	}

	return opts
}

// probeConfig returns the flags as a config section, used when writing a new config file.
func (p *probeFlags) probeConfig() *config.ProbeConfigSection {
	attempt := config.Duration(p.attemptTimeout)
	connect := config.Duration(p.connectTimeout)

	return &config.ProbeConfigSection{
		DefaultScheme:  &p.defaultScheme,
		SchemeFallback: &p.schemeFallback,
		UserAgent:      &p.userAgent,
		Timeout: &config.ProbeTimeoutConfigSection{
			Attempt: &attempt,
			Connect: &connect,
		},
	}
}
