package fetch

import (
	"fmt"
	"net/http"

	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
)

// StatusError is the cause recorded for an attempt that got a 5xx
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// RetryExhaustedError is raised once the retry budget is spent.
// It matches errors.ErrRetriesExhausted and unwraps to the last cause.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", tmerrors.ErrRetriesExhausted, e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() []error {
	return []error{tmerrors.ErrRetriesExhausted, e.Last}
}
