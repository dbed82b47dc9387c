package intent

import "testing"

func TestFormatBalance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		balance float64
		want    string
	}{
		{150.0, "150.0"},
		{449.0, "449.0"},
		{150.5, "150.5"},
		{0, "0.0"},
		{1234.25, "1234.25"},
	}

	for _, tt := range tests {
		if got := formatBalance(tt.balance); got != tt.want {
			t.Errorf("formatBalance(%v) = %q, want %q", tt.balance, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  any
		want int
	}{
		{"nil defaults", nil, DefaultRechargeAmount},
		{"json number", float64(299), 299},
		{"json number truncated", 150.9, 150},
		{"numeric string", "449", 449},
		{"padded numeric string", " 299 ", 299},
		{"garbage string defaults", "two hundred", DefaultRechargeAmount},
		{"float string defaults", "150.5", DefaultRechargeAmount},
		{"true coerces to one", true, 1},
		{"false coerces to zero", false, 0},
		{"int passthrough", 99, 99},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseAmount(tt.raw); got != tt.want {
				t.Errorf("parseAmount(%v) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}
