// Package models defines the request and response shapes of a photo search.
package models

// SearchQuery is a free-text search request. The text is passed to the encoder as is.
type SearchQuery struct {
	Query string `json:"query"`
}
