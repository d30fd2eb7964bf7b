package search

import "fmt"

// EncodingError reports that the embedding model could not process the query text.
type EncodingError struct {
	Query string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode query %q: %v", e.Query, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
