package search

import "testing"

func TestFormatScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, "50.00%"},
		{1.0, "100.00%"},
		{0.0, "0.00%"},
		{0.8732, "87.32%"},
		{-0.25, "-25.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatScore(tt.score); got != tt.want {
				t.Errorf("FormatScore(%v) = %q, want %q", tt.score, got, tt.want)
			}
		})
	}
}
