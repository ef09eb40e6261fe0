package errors

import (
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"dot", "dot", false},
		{"svg", "svg", false},
		{"png", "png", false},
		{"json", "json", false},
		{"uppercase", "SVG", false},

		{"empty", "", true},
		{"unsupported", "pdf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("ValidateOutputFormat(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "simple", false},
		{"dense", "dense", false},

		{"empty", "", true},
		{"unsupported", "fancy", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStyle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "snapshot.json", false},
		{"valid nested", "out/gen-42/snapshot.json", false},
		{"valid filename only", "config.toml", false},
		{"valid with dots", "v1.2.3/snapshot.json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		schemes []string
		wantErr bool
	}{
		{"https default", "https://example.com/path", nil, false},
		{"http default", "http://example.com/path", nil, false},
		{"empty default", "", nil, true},
		{"ftp rejected by default", "ftp://example.com", nil, true},
		{"no scheme", "example.com", nil, true},
		{"redis scheme allowed explicitly", "redis://cache:6379", []string{"redis://"}, false},
		{"mongodb scheme allowed explicitly", "mongodb://db:27017", []string{"mongodb://"}, false},
		{"http rejected when only redis allowed", "http://example.com", []string{"redis://"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input, tt.schemes...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidConfig,
		ErrCodeInvalidFormat,
		ErrCodeInvalidStyle,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeSnapshotNotFound,
		ErrCodeFileNotFound,
		ErrCodeSessionNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeRateLimited,
		ErrCodeUnauthorized,
		ErrCodeForbidden,
		ErrCodeSessionExpired,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
