package pagination

import (
	"testing"
)

func TestCursorRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"simple", "next-page-42"},
		{"url-unsafe characters", "a/b+c=d?e&f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := EncodeCursor(tt.token)
			if tt.token == "" && cursor != "" {
				t.Fatalf("empty token should encode to empty cursor, got %q", cursor)
			}

			got, err := DecodeCursor(cursor)
			if err != nil {
				t.Fatalf("DecodeCursor(%q): %v", cursor, err)
			}
			if got != tt.token {
				t.Errorf("round trip = %q, want %q", got, tt.token)
			}
		})
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := DecodeCursor("not base64 !!!")
	if err == nil {
		t.Fatal("expected error for malformed cursor")
	}
}
