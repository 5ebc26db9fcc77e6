package errors

import "testing"

func TestValidateKindName(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		wantErr bool
	}{
		{"memory cube", "ZXZ", false},
		{"temporal pipe", "ZXO", false},
		{"hadamard pipe", "ZXOH", false},
		{"spatial pipe", "OXZ", false},
		{"empty", "", true},
		{"too short", "ZX", true},
		{"too long", "ZXOZH", true},
		{"lowercase", "zxz", true},
		{"invalid letter", "ZXA", true},
		{"digit", "ZX1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKindName(tt.kind)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKindName(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
			if err != nil && !IsInvariantViolation(err) {
				t.Errorf("ValidateKindName(%q) should return an invariant violation, got %v", tt.kind, GetCode(err))
			}
		})
	}
}

func TestValidateManifestFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"simple name", "memory.toml", false},
		{"empty", "", true},
		{"path separator", "dir/memory.toml", true},
		{"backslash", "dir\\memory.toml", true},
		{"hidden file", ".memory.toml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateManifestFilename(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateManifestFilename(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
		})
	}
}

func TestValidateObservableName(t *testing.T) {
	tests := []struct {
		name    string
		obs     string
		wantErr bool
	}{
		{"simple", "logical_z", false},
		{"empty", "", true},
		{"control character", "obs\x00", true},
		{"too long", string(make([]byte, 200)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObservableName(tt.obs)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateObservableName error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
