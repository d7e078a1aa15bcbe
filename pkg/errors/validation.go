package errors

import (
	"strings"
	"unicode"
)

// MaxNameLength bounds netlist names accepted over the API.
const MaxNameLength = 128

// ValidateName checks a netlist name for use in logs, cache keys and
// response bodies. An empty name is allowed.
//
// Rejected:
//   - Names longer than [MaxNameLength] bytes
//   - Control characters, including null bytes and newlines
//   - Path separators and traversal sequences
func ValidateName(name string) error {
	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "name contains invalid characters: %q", pattern)
		}
	}
	return nil
}
