package redis

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		userID string
		bookID int
		want   string
	}{
		{"reader-1", 1, "gamebook:progress:reader-1:1"},
		{"4f9c", 42, "gamebook:progress:4f9c:42"},
	}

	for _, tt := range tests {
		if got := Key(tt.userID, tt.bookID); got != tt.want {
			t.Errorf("Key(%q, %d) = %q, want %q", tt.userID, tt.bookID, got, tt.want)
		}
	}
}
