package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ManifestExtensions lists the file extensions recognised as manifests.
var ManifestExtensions = []string{".yaml", ".yml"}

// ValidatePackageName validates a package name read from a manifest.
//
// The rules are conservative:
//   - No empty names
//   - No control characters
//   - No whitespace (names are joined with "-" and " " when rendered)
//   - Maximum length of 256 characters
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
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name %q contains whitespace", name)
		}
	}

	return nil
}

// ValidateManifestFilename validates a manifest filename.
// It must be a plain, non-hidden basename with a YAML extension.
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

	if !IsManifestFile(filename) {
		return New(ErrCodeInvalidManifest, "manifest %q must have a .yaml or .yml extension", filename)
	}

	return nil
}

// IsManifestFile reports whether filename has a manifest extension.
func IsManifestFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range ManifestExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
