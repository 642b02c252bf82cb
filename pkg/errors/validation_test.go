package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "zlib", false},
		{"valid with dash", "py-setuptools", false},
		{"valid with underscore", "util_linux", false},
		{"valid with dot", "intel.oneapi", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"space", "foo bar", true},
		{"tab", "foo\tbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateManifestFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid yaml", "zlib-spack-v0.16.0.yaml", false},
		{"valid yml", "zlib.yml", false},
		{"upper case extension", "zlib.YAML", false},

		{"empty", "", true},
		{"with path /", "path/to/file.yaml", true},
		{"with path \\", "path\\to\\file.yaml", true},
		{"hidden file", ".hidden.yaml", true},
		{"json", "spec-diffs.json", true},
		{"no extension", "manifest", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateManifestFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateManifestFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidManifest) {
				t.Errorf("expected INVALID_MANIFEST, got %v", GetCode(err))
			}
		})
	}
}
