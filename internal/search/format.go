package search

import "fmt"

// FormatScore renders a similarity score as a percentage with two decimals: 0.8732 -> "87.32%".
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}
