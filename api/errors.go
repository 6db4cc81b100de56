package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
)

// ErrorResponse is the error body shape the API uses. Different endpoints
// fill different fields.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

// HTTPError is a non-2xx response that was not retried away
type HTTPError struct {
	StatusCode int
	Message    string

	// RefreshFailed is set when the server rejected the session and the
	// refresh attempted during the same call also failed
	RefreshFailed bool
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	switch {
	case e.RefreshFailed:
		return tmerrors.ErrSessionExpired
	case e.StatusCode == http.StatusUnauthorized:
		return tmerrors.ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return tmerrors.ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return tmerrors.ErrNotFound
	default:
		return nil
	}
}

const maxErrorBody = 64 << 10

func errorFromResponse(resp *http.Response) *HTTPError {
	httpErr := &HTTPError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return httpErr
	}

	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil {
		for _, msg := range []string{errResp.Error, errResp.Detail, errResp.Message} {
			if msg != "" {
				httpErr.Message = msg
				return httpErr
			}
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(resp.Header.Get("Content-Type")), "application/json") {
		httpErr.Message = strings.TrimSpace(string(body))
	}
	return httpErr
}
