package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateIndices checks the positional field indices used to build a
// co-occurrence graph. Both indices must be non-negative and must differ:
// grouping a column by itself would pair every value with itself.
func ValidateIndices(nodeIndex, groupIndex int) error {
	if nodeIndex < 0 {
		return New(ErrCodeInvalidInput, "node index must be >= 0, got %d", nodeIndex)
	}
	if groupIndex < 0 {
		return New(ErrCodeInvalidInput, "group index must be >= 0, got %d", groupIndex)
	}
	if nodeIndex == groupIndex {
		return New(ErrCodeInvalidInput, "node index and group index must differ (both %d)", nodeIndex)
	}
	return nil
}

// ValidateDelimiter rejects delimiters that cannot split a line into fields.
func ValidateDelimiter(delim string) error {
	if delim == "" {
		return New(ErrCodeInvalidFormat, "delimiter cannot be empty")
	}
	if strings.ContainsAny(delim, "\r\n") {
		return New(ErrCodeInvalidFormat, "delimiter cannot contain line breaks")
	}
	return nil
}

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks
// when the name is interpolated into a registry URL.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
//
// Ecosystem-specific validation is done by the functions below.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// pythonPackageNameRegex matches valid Python package names (PEP 508).
var pythonPackageNameRegex = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)

// ValidatePythonPackageName validates a Python package name per PEP 508.
func ValidatePythonPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !pythonPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Python package name: %q", name)
	}

	return nil
}

// npmPackageNameRegex matches valid npm package names.
var npmPackageNameRegex = regexp.MustCompile(`^(@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)

// ValidateNpmPackageName validates an npm package name.
func ValidateNpmPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if strings.ToLower(name) != name {
		return New(ErrCodeInvalidPackage, "npm package names must be lowercase: %q", name)
	}

	if !npmPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid npm package name: %q", name)
	}

	return nil
}
