package corpus

import "fmt"

// LoadError reports that the embedding file is missing, malformed, or has
// mismatched name and vector sequences.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load corpus %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
