package errors

import (
	"strings"
	"unicode"
)

// ValidateKindName validates a cube or pipe kind string (e.g. "ZXZ", "ZXO",
// "ZXOH"). It rejects strings that could not be a kind under any convention;
// convention-specific validation is done by the convention itself.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Only upper-case basis letters (X, Y, Z), O (open/time axis) and H
//   - Exactly three or four characters
func ValidateKindName(kind string) error {
	if kind == "" {
		return New(ErrCodeInvalidInput, "kind cannot be empty")
	}
	if len(kind) < 3 || len(kind) > 4 {
		return New(ErrCodeInvalidInput, "kind %q must have 3 or 4 characters", kind)
	}
	for _, r := range kind {
		switch r {
		case 'X', 'Y', 'Z', 'O', 'H':
		default:
			return New(ErrCodeInvalidInput, "kind %q contains invalid character %q", kind, r)
		}
	}
	return nil
}

// ValidateManifestFilename validates an experiment-manifest filename for
// safety. It ensures the filename is a simple basename without path
// components.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
	}
	return nil
}

// ValidateObservableName validates a user-supplied observable name used in
// manifests and API requests.
func ValidateObservableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "observable name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "observable name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "observable name contains control characters")
		}
	}
	return nil
}
