package errors

import (
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "LMFD", false},
		{"valid with dash", "F-16C", false},
		{"valid with space", "Left MFD", false},
		{"valid with dot", "A.10C", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", string(make([]byte, 300)), true},
		{"valid with slash", "L/R MFD", false},
		{"valid with backslash", "foo\\bar", false},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeMalformedConfig) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeMalformedConfig)
			}
		})
	}
}

func TestValidatePathName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"F-16C", false},
		{"A.10C", false},
		{"", true},
		{"foo..bar", true},
		{"foo/bar", true},
		{"foo\\bar", true},
		{"foo\x00bar", true},
	}

	for _, tt := range tests {
		err := ValidatePathName(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePathName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateFilePattern(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"*.json", false},
		{"mfd-*.json", false},
		{"", true},
		{"configs/*.json", true},
		{"configs\\*.json", true},
	}

	for _, tt := range tests {
		err := ValidateFilePattern(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFilePattern(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
