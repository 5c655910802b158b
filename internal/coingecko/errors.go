package coingecko

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	ErrRateLimited = errors.New("rate limited by coingecko")
)

// NetworkError is a transport level failure: DNS, refused connection,
// timeout, or a body that could not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("coingecko %s: network: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is a non-2xx response. A 429 also matches ErrRateLimited.
type HTTPStatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("coingecko %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("coingecko %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *HTTPStatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// ParseError means the body did not decode into the expected shape.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("coingecko %s: parse: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an
// HTTPStatusError.
func StatusCode(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Kind names the failure class of err for logs and metrics.
func Kind(err error) string {
	var (
		ne *NetworkError
		se *HTTPStatusError
		pe *ParseError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &se):
		return "status"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &ne):
		return "network"
	default:
		return "unknown"
	}
}
