package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateModelName validates a named model key from the [models] table.
// Names are shown in menus and used in URLs, so only letters, digits,
// dashes and underscores are accepted.
func ValidateModelName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidModel, "model name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidModel, "model name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			continue
		}
		return New(ErrCodeInvalidModel, "model name contains invalid character %q", r)
	}
	return nil
}

// ValidateEndpoint checks that raw is an absolute http(s) URL.
func ValidateEndpoint(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidInput, "endpoint cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid endpoint %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "endpoint must use http or https: %q", raw)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "endpoint has no host: %q", raw)
	}
	return nil
}

// ValidatePath validates a local file path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "path too long (max 500 characters)")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "path contains null byte")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}
	return nil
}
