package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"volunteer@example.com", true},
		{"first.last@example.org", true},
		{"team+beach@greenearth.org", true},
		{"contact@sub.charity.org.uk", true},
		{"  padded@example.com  ", true},
		{"ops@localhost", true},

		{"", false},
		{"   ", false},
		{"not-an-email", false},
		{"nobody@", false},
		{"@example.com", false},
		{".lead@example.com", false},
		{"trail.@example.com", false},
		{"double..dot@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},
		{"Green Earth <team@greenearth.org>", false},
		{"with space@example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}
