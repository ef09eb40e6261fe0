package errors

import (
	"strings"
	"unicode"
)

// validFormats are the output encoding names ValidateOutputFormat accepts
// for a rendered ancestry graph.
var validFormats = map[string]bool{
	"dot":  true,
	"svg":  true,
	"png":  true,
	"json": true,
}

// ValidateOutputFormat validates a requested output format against
// validFormats (dot, svg, png, json). The visualize command does not call
// it; that command checks its own narrower set (dot, svg).
func ValidateOutputFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "output format cannot be empty")
	}
	if !validFormats[strings.ToLower(format)] {
		return New(ErrCodeInvalidFormat, "unsupported output format: %q (want one of dot, svg, png, json)", format)
	}
	return nil
}

// validStyles are the layout styles visualize supports for rendering the
// ancestry graph.
var validStyles = map[string]bool{
	"simple": true,
	"dense":  true,
}

// ValidateStyle validates a requested visualization style.
func ValidateStyle(style string) error {
	if style == "" {
		return New(ErrCodeInvalidStyle, "style cannot be empty")
	}
	if !validStyles[strings.ToLower(style)] {
		return New(ErrCodeInvalidStyle, "unsupported style: %q (want one of simple, dense)", style)
	}
	return nil
}

// ValidatePath validates a file path for safety: a relative path the CLI
// can use to write a config, snapshot, or rendered artifact without
// escaping its working directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety, e.g. a configured Redis
// or MongoDB connection endpoint surfaced through a config file.
// It ensures the URL has a safe scheme.
func ValidateURL(rawURL string, allowedSchemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if len(allowedSchemes) == 0 {
		allowedSchemes = []string{"http://", "https://"}
	}
	for _, scheme := range allowedSchemes {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the allowed schemes: %v", allowedSchemes)
}
