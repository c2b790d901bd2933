package l10n

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNegotiateLocales(t *testing.T) {
	tests := []struct {
		name          string
		requested     []string
		available     []string
		defaultLocale string
		want          []string
	}{
		{
			name:          "parent chain then default",
			requested:     []string{"de-AT", "pl"},
			available:     []string{"en-US", "de", "pl", "fr"},
			defaultLocale: "en-US",
			want:          []string{"de", "pl", "en-US"},
		},
		{
			name:      "case insensitive exact match before siblings",
			requested: []string{"EN-us"},
			available: []string{"en-GB", "en-US"},
			want:      []string{"en-US", "en-GB"},
		},
		{
			name:          "regional parent and same base",
			requested:     []string{"es-MX"},
			available:     []string{"es-ES", "es", "en-US"},
			defaultLocale: "en-US",
			want:          []string{"es", "es-ES", "en-US"},
		},
		{
			name:          "default kept when unavailable",
			requested:     []string{"fr"},
			available:     []string{"pl"},
			defaultLocale: "en_US",
			want:          []string{"en-US"},
		},
		{
			name:          "duplicates collapse",
			requested:     []string{"pl", "pl_PL", "pl"},
			available:     []string{"pl"},
			defaultLocale: "pl",
			want:          []string{"pl"},
		},
		{
			name: "nothing requested",
			want: nil,
		},
	}

	for _, tc := range tests {
		got := NegotiateLocales(tc.requested, tc.available, tc.defaultLocale)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}
