package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputPath validates a destination file path for generated artifacts.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidInput, "output path must name a file, not a directory: %q", path)
	}

	return nil
}

// ValidateRoutingName validates a routing algorithm name as written into
// the router node types. Names are opaque to the generator but must be a
// single non-empty token.
func ValidateRoutingName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "routing algorithm cannot be empty")
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return New(ErrCodeInvalidConfig, "routing algorithm must not contain whitespace: %q", name)
	}
	return nil
}
