package validation

import "testing"

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{
			name:      "Valid pretty format",
			format:    "pretty",
			expectErr: false,
		},
		{
			name:      "Valid json format",
			format:    "json",
			expectErr: false,
		},
		{
			name:      "CSV export is not a CLI format",
			format:    "csv",
			expectErr: true,
		},
		{
			name:      "Empty format",
			format:    "",
			expectErr: true,
		},
		{
			name:      "Case sensitive - uppercase",
			format:    "PRETTY",
			expectErr: true,
		},
		{
			name:      "Leading/trailing spaces",
			format:    " json ",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.expectErr && err == nil {
				t.Errorf("expected error for format %q, got nil", tt.format)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error for format %q: %v", tt.format, err)
			}
		})
	}
}

func TestValidateSweep(t *testing.T) {
	tests := []struct {
		name      string
		step      float64
		points    int
		expectErr bool
	}{
		{"Chart defaults", 5, 20, false},
		{"Single point", 0, 1, false},
		{"No points", 5, 0, true},
		{"Too many points", 5, 201, true},
		{"Negative step", -1, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSweep(tt.step, tt.points, 200)
			if (err != nil) != tt.expectErr {
				t.Errorf("ValidateSweep(%v, %d) error = %v, expectErr %v", tt.step, tt.points, err, tt.expectErr)
			}
		})
	}
}
