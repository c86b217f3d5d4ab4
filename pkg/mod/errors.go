package mod

import "fmt"

// FormatError reports a malformed, truncated or unsupported MOD file.
// Loading fails outright; a song with a FormatError never reaches the
// player.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("mod: bad file at offset %d: %s", e.Offset, e.Reason)
}

func formatErrorf(offset int, format string, args ...interface{}) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports invalid player setup parameters. It is
// fatal at construction time; the caller must not start playback.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "mod: invalid configuration: " + e.Reason
}
