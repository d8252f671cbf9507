package model

import "fmt"

// ModelNotFoundError reports a missing artifact bundle at load time. The
// serving path fails fast on it; there is no untrained fallback.
type ModelNotFoundError struct {
	Path string
	Err  error
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model artifact not found at %s: %v", e.Path, e.Err)
}

func (e *ModelNotFoundError) Unwrap() error { return e.Err }

// EmptyColumnError reports a feature column with zero non-missing values
// during imputer fitting.
type EmptyColumnError struct {
	Column string
}

func (e *EmptyColumnError) Error() string {
	return fmt.Sprintf("feature column %s has no observed values", e.Column)
}
