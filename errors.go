package sfx_installer

import (
	"fmt"
	"strings"
)

type (
	// ConfigurationError is returned for a malformed install spec or configuration file. It
	// is always reported before any output file is opened.
	ConfigurationError struct {
		Source string
		Reason string
	}
	// BuildError is returned when the native compiler fails or the host platform can't
	// build a stub. Output holds whatever the compiler printed.
	BuildError struct {
		Step   string
		Output string
		Err    error
	}
	// InvariantViolation is returned when recompiling the stub with its own size baked in
	// doesn't reproduce that size. Sizes lists every observed stub size, in pass order.
	InvariantViolation struct {
		Sizes []int64
	}
)

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Source, e.Reason)
}

func (e *BuildError) Error() string {
	msg := "build error: " + e.Step
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

func (e *InvariantViolation) Error() string {
	sizes := make([]string, 0, len(e.Sizes))
	for _, s := range e.Sizes {
		sizes = append(sizes, fmt.Sprint(s))
	}
	return fmt.Sprintf(
		"stub size did not reach a fixed point after %d passes (sizes: %s)",
		len(e.Sizes), strings.Join(sizes, " -> "),
	)
}

func configErrorf(source, format string, args ...interface{}) error {
	return &ConfigurationError{Source: source, Reason: fmt.Sprintf(format, args...)}
}
