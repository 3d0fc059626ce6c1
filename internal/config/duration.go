package config

import (
	"strings"
	"time"
)

// Duration is a custom time.Duration type that is written to and read from config files as a string (e.g. "15s").
type Duration time.Duration

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	v, err := time.ParseDuration(s)
	if err != nil {
		return NewErrInvalidValue("duration", s)
	}
	*d = Duration(v)
	return nil
}
