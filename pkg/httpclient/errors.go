package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 4 << 10

// StatusError reports a response whose status code the caller did not expect.
type StatusError struct {
	StatusCode int
	// Status is the full status line text, for example "404 Not Found".
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %s", e.Status)
	}
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

// NewStatusError drains and closes resp.Body, keeping a bounded prefix of it.
func NewStatusError(resp *http.Response) *StatusError {
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     status,
		Body:       strings.TrimSpace(string(body)),
	}
}

// IsSuccess reports whether code is 2xx.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
