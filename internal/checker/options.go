package checker

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/mozilla-ai/urlprobe/internal/contracts"
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Options contains optional configuration for the Checker.
// NewOptions should be used to create instances of Options.
type Options struct {
	// Client is the HTTP client used for all probes.
	// When nil, a client is built from Transport and ConnectTimeout.
	Client *http.Client

	// Transport is used to build the HTTP client when Client is nil.
	Transport http.RoundTripper

	// UserAgent is sent with every probe, some origins reject requests that lack a browser-like one.
	UserAgent string

	// DefaultScheme is prepended to URLs that do not specify one.
	DefaultScheme string

	// SchemeFallback enables a second probe sequence over plain HTTP when the scheme was omitted
	// and the HTTPS sequence received no response at all.
	SchemeFallback bool

	// AttemptTimeout bounds each individual probe (GET or HEAD).
	AttemptTimeout time.Duration

	// ConnectTimeout bounds dialing and the TLS handshake of the default transport.
	ConnectTimeout time.Duration

	// Recorder receives probe and verdict observations.
	Recorder contracts.ProbeRecorder
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Starts with default values, then applies options in order with later options overriding earlier ones.
func NewOptions(opt ...Option) (Options, error) {
	options := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithHTTPClient configures the HTTP client used for probes, taking precedence over WithTransport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		o.Client = client
		return nil
	}
}

// WithTransport configures the round tripper used to build the probe HTTP client.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *Options) error {
		if isNil(rt) {
			return fmt.Errorf("transport cannot be nil")
		}
		o.Transport = rt
		return nil
	}
}

// WithUserAgent configures the User-Agent header sent with each probe.
func WithUserAgent(ua string) Option {
	return func(o *Options) error {
		ua = strings.TrimSpace(ua)
		if ua == "" {
			return fmt.Errorf("user agent cannot be empty")
		}
		o.UserAgent = ua
		return nil
	}
}

// WithDefaultScheme configures the scheme prepended to URLs that omit one.
func WithDefaultScheme(scheme string) Option {
	return func(o *Options) error {
		scheme = strings.ToLower(strings.TrimSpace(scheme))
		if scheme != SchemeHTTP && scheme != SchemeHTTPS {
			return fmt.Errorf("default scheme must be %q or %q, got %q", SchemeHTTP, SchemeHTTPS, scheme)
		}
		o.DefaultScheme = scheme
		return nil
	}
}

// WithSchemeFallback enables or disables falling back to plain HTTP for scheme-less input.
func WithSchemeFallback(enabled bool) Option {
	return func(o *Options) error {
		o.SchemeFallback = enabled
		return nil
	}
}

// WithAttemptTimeout configures the maximum duration of each individual probe.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("attempt timeout must be positive, got %v", timeout)
		}
		o.AttemptTimeout = timeout
		return nil
	}
}

// WithConnectTimeout configures the dial and TLS handshake timeout of the default transport.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("connect timeout must be positive, got %v", timeout)
		}
		o.ConnectTimeout = timeout
		return nil
	}
}

// WithRecorder configures where probe observations are reported.
func WithRecorder(r contracts.ProbeRecorder) Option {
	return func(o *Options) error {
		if isNil(r) {
			return fmt.Errorf("recorder cannot be nil")
		}
		o.Recorder = r
		return nil
	}
}

// DefaultUserAgent returns the browser-like User-Agent sent with probes.
func DefaultUserAgent() string {
	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
}

// DefaultScheme returns the scheme prepended to URLs that omit one.
func DefaultScheme() string {
	return SchemeHTTPS
}

// DefaultSchemeFallback returns whether plain HTTP is tried when HTTPS gets no response.
func DefaultSchemeFallback() bool {
	return true
}

// DefaultAttemptTimeout returns the default upper bound of each probe.
func DefaultAttemptTimeout() time.Duration {
	return 15 * time.Second
}

// DefaultConnectTimeout returns the default dial and TLS handshake timeout.
func DefaultConnectTimeout() time.Duration {
	return 10 * time.Second
}

func defaultOptions() Options {
	return Options{
		UserAgent:      DefaultUserAgent(),
		DefaultScheme:  DefaultScheme(),
		SchemeFallback: DefaultSchemeFallback(),
		AttemptTimeout: DefaultAttemptTimeout(),
		ConnectTimeout: DefaultConnectTimeout(),
		Recorder:       nopRecorder{},
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
