package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxContentSize = 1 * 1024 * 1024 // 1MB - default maximum app content size
)

// String length limits
const (
	MaxAppNameLength = 128
)

// AppNamePattern allows alphanumerics plus dots, hyphens and underscores,
// starting with an alphanumeric so "." and ".." can never match.
var AppNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ReservedAppNames collide with fixed routes and cannot be used as app names
var ReservedAppNames = map[string]struct{}{
	"edit":        {},
	"api":         {},
	"health":      {},
	"metrics":     {},
	"favicon.ico": {},
}

// ValidationError describes why an input was rejected
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return &ValidationError{Field: fieldName, Reason: "is required"}
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return &ValidationError{Field: fieldName, Reason: fmt.Sprintf("must be at least %d characters", minLen)}
	}
	if length > maxLen {
		return &ValidationError{Field: fieldName, Reason: fmt.Sprintf("must not exceed %d characters", maxLen)}
	}

	if strings.Contains(value, "\x00") {
		return &ValidationError{Field: fieldName, Reason: "contains invalid characters"}
	}

	return nil
}

// ValidateAppName checks that name is safe to use as a single path segment
func ValidateAppName(name string) error {
	if err := ValidateString(name, "app name", 1, MaxAppNameLength, true); err != nil {
		return err
	}

	if !AppNamePattern.MatchString(name) {
		return &ValidationError{
			Field:  "app name",
			Reason: "contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)",
		}
	}

	if _, reserved := ReservedAppNames[strings.ToLower(name)]; reserved {
		return &ValidationError{Field: "app name", Reason: fmt.Sprintf("%q is reserved", name)}
	}

	return nil
}

// ValidateContentSize checks content against a byte limit (0 means MaxContentSize)
func ValidateContentSize(data []byte, limit int64) error {
	if limit <= 0 {
		limit = MaxContentSize
	}
	if int64(len(data)) > limit {
		return &ValidationError{
			Field:  "content",
			Reason: fmt.Sprintf("size %d bytes exceeds maximum %d bytes", len(data), limit),
		}
	}
	return nil
}
