package cli

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1 << 20, "1.00 MB"},
		{3 << 30, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{20 * time.Millisecond, "20ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30.0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	if got := FormatRatio(1, 4); got != "25%" {
		t.Errorf("got=%q", got)
	}
	if got := FormatRatio(3, 0); got != "0%" {
		t.Errorf("got=%q", got)
	}
}
