// Package httputil provides HTTP error handling utilities for the remote API clients.
package httputil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxErrorBodySize is the maximum size of error body kept in an HTTPError.
const MaxErrorBodySize = 500

// HTTPError is a non-2xx response from a remote API.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	target := e.URL
	if e.Method != "" {
		target = e.Method + " " + target
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: %s (status %d): %s", target, e.Status, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %s (status %d)", target, e.Status, e.StatusCode)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ParseErrorResponse returns nil for responses below 400. Otherwise it reads
// the body into an *HTTPError and re-wraps it so the caller can still decode it.
func ParseErrorResponse(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	bodyStr := ""
	if err == nil && len(bodyBytes) > 0 {
		bodyStr = truncate(string(bodyBytes), MaxErrorBodySize)
	}

	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Body:       bodyStr,
	}
	if resp.Request != nil {
		httpErr.Method = resp.Request.Method
		httpErr.URL = resp.Request.URL.String()
	}
	return httpErr
}

// StatusCode extracts the status of a wrapped *HTTPError, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
