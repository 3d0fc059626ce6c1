package checker

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/mozilla-ai/urlprobe/internal/errors"
)

// Normalize converts user input into an absolute http(s) URL suitable for probing.
//
// Surrounding whitespace is removed and defaultScheme is prepended when the input has no scheme.
// Internationalized host names are converted to their ASCII (punycode) form.
// The returned bool reports whether the scheme was omitted by the caller.
func Normalize(rawURL string, defaultScheme string) (string, bool, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return "", false, fmt.Errorf("%w: url cannot be empty", errors.ErrInvalidURL)
	}

	omitted := !hasScheme(s)
	if omitted {
		s = defaultScheme + "://" + strings.TrimPrefix(s, "//")
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", omitted, fmt.Errorf("%w: %w", errors.ErrInvalidURL, err)
	}

	if u.Scheme != SchemeHTTP && u.Scheme != SchemeHTTPS {
		return "", omitted, fmt.Errorf("%w: unsupported scheme '%s'", errors.ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return "", omitted, fmt.Errorf("%w: missing host in '%s'", errors.ErrInvalidURL, s)
	}

	host, err = asciiHost(host)
	if err != nil {
		return "", omitted, fmt.Errorf("%w: %w", errors.ErrInvalidURL, err)
	}

	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}

	return u.String(), omitted, nil
}

// hasScheme reports whether s starts with a syntactically valid "scheme://" prefix.
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}

	for j, r := range s[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}

	return true
}

// asciiHost lower-cases the host and converts non-ASCII labels to punycode.
// IP literals are returned untouched.
func asciiHost(host string) (string, error) {
	if net.ParseIP(host) != nil {
		return host, nil
	}

	if isASCII(host) {
		return strings.ToLower(host), nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host '%s': %w", host, err)
	}

	return ascii, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
