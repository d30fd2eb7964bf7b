// Package cli provides result rendering for the picsearch command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hyperjump/picsearch/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one "label<TAB>name" line per result.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(9).Align(lipgloss.Right)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

// ParseOutputFormat validates a format name from a flag.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for _, result := range response.Results {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", result.Label, result.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d photos for %q in %dms",
		response.Total, response.Query, response.QueryTime)))
	if len(response.Results) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no photos in the corpus"))
		return
	}
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
	fmt.Fprintln(w)
}

func writeOneResult(w io.Writer, result *models.ResultItem) {
	location := result.URL
	if location == "" {
		location = result.Path
	}
	fmt.Fprintf(w, "%2d. %s  %s  %s\n",
		result.Rank,
		labelStyle.Render(result.Label),
		result.Name,
		dimStyle.Render(fmt.Sprintf("%s %dx%d %s", result.Format, result.Width, result.Height, location)))
}
