package errors

import (
	"strings"
	"unicode"
)

// ValidateName validates a configuration name:
//   - No empty names
//   - No control characters
//   - Maximum length of 128 characters
//
// Configuration names may contain path separators ("L/R MFD"); cache keys
// built from them are sanitized separately.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeMalformedConfig, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeMalformedConfig, "name too long (max 128 characters): %q", name[:32]+"...")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeMalformedConfig, "name contains invalid control characters: %q", name)
		}
	}
	return nil
}

// ValidatePathName validates a name that becomes a directory or file name
// component: module names, vendor/product and variant tokens. On top of
// ValidateName it rejects path separators and traversal sequences.
func ValidatePathName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	dangerousPatterns := []string{
		"..",
		"/",
		"\\",
		"\x00",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeMalformedConfig, "name %q contains invalid characters: %q", name, pattern)
		}
	}

	return nil
}

// ValidateFilePattern validates a glob used to discover configuration files.
// Patterns must match base names only.
func ValidateFilePattern(pattern string) error {
	if pattern == "" {
		return New(ErrCodeInvalidInput, "file pattern cannot be empty")
	}
	if strings.ContainsAny(pattern, "/\\") {
		return New(ErrCodeInvalidInput, "file pattern cannot contain path separators: %q", pattern)
	}
	return nil
}
