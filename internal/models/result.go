package models

// ResultItem is one ranked photo: the resolved file plus its similarity score and label.
type ResultItem struct {
	Rank   int     `json:"rank"`
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	URL    string  `json:"url,omitempty"`
	Score  float64 `json:"score"`
	Label  string  `json:"label"`
	Format string  `json:"format"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Path   string  `json:"-"`
}

// SearchResponse is the ranked result of one query, highest score first.
type SearchResponse struct {
	ID        string        `json:"id"`
	Query     string        `json:"query"`
	Results   []*ResultItem `json:"results"`
	Total     int           `json:"total"`
	QueryTime int64         `json:"query_time_ms"`
}
