package photos

import "fmt"

// LoadError reports that a photo resolved from the corpus is missing or unreadable.
type LoadError struct {
	Name string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load photo %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("load photo %s (%s): %v", e.Name, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
