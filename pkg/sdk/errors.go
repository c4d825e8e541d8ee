package pitchsearch

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/pitchsearch/internal/domain"
)

// Sentinel errors. Use errors.Is() to check.
var (
	ErrQueryRequired  = domain.ErrQueryRequired
	ErrRateLimited    = domain.ErrRateLimited
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSearchFailed   = errors.New("search failed")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	sentinel   error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pitchsearch: %d %s", e.StatusCode, e.Message)
}

// Unwrap exposes the sentinel matching the status code.
func (e *APIError) Unwrap() error { return e.sentinel }
