package metadata

import (
	"errors"
	"fmt"
)

// None of these errors are retryable.
var (
	ErrUnsupportedProvider = errors.New("provider is not supported")
	ErrMissingSchema       = errors.New("schema name is required")
)

// QueryError is returned when the catalog query fails at the connection or
// driver level.
type QueryError struct {
	Provider Provider
	Cause    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s metadata query: %v", e.Provider, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}
