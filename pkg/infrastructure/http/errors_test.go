package httputil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseErrorResponse_Success(t *testing.T) {
	resp := &http.Response{
		StatusCode: 201,
		Body:       http.NoBody,
	}

	if err := ParseErrorResponse(resp); err != nil {
		t.Errorf("Expected nil error for 201 response, got: %v", err)
	}
}

func TestParseErrorResponse_Error(t *testing.T) {
	body := `{"message": "Authorization Error", "errors": [{"resource": "Athlete", "code": "invalid"}]}`
	resp := &http.Response{
		StatusCode: 401,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    httptest.NewRequest("GET", "https://www.strava.com/api/v3/athlete/activities", nil),
	}

	err := ParseErrorResponse(resp)
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}

	httpErr, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("Expected *HTTPError, got %T", err)
	}
	if httpErr.StatusCode != 401 || httpErr.Method != "GET" {
		t.Errorf("unexpected error fields: %+v", httpErr)
	}
	if !strings.Contains(httpErr.Error(), "Authorization Error") {
		t.Errorf("Expected Error() to contain body, got: %s", httpErr.Error())
	}
}

func TestParseErrorResponse_BodyRewrap(t *testing.T) {
	body := `{"error": "test"}`
	resp := &http.Response{
		StatusCode: 500,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    httptest.NewRequest("POST", "https://www.strava.com/api/v3/uploads", nil),
	}

	_ = ParseErrorResponse(resp)

	rewrapped, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read re-wrapped body: %v", err)
	}
	if string(rewrapped) != body {
		t.Errorf("Expected re-wrapped body %q, got %q", body, string(rewrapped))
	}
}

func TestParseErrorResponse_Truncation(t *testing.T) {
	resp := &http.Response{
		StatusCode: 502,
		Body:       io.NopCloser(strings.NewReader(strings.Repeat("x", MaxErrorBodySize*2))),
	}

	httpErr := ParseErrorResponse(resp).(*HTTPError)
	if len(httpErr.Body) != MaxErrorBodySize+3 {
		t.Errorf("Expected truncated body of %d chars, got %d", MaxErrorBodySize+3, len(httpErr.Body))
	}
}

func TestStatusCode(t *testing.T) {
	wrapped := fmt.Errorf("update activity 1: %w", &HTTPError{StatusCode: 404})
	if got := StatusCode(wrapped); got != 404 {
		t.Errorf("StatusCode = %d, want 404", got)
	}
	if got := StatusCode(fmt.Errorf("plain")); got != 0 {
		t.Errorf("StatusCode = %d, want 0", got)
	}
}
