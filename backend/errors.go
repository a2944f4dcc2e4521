package backend

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxErrorBody caps the cell width of a failed response body kept for display
const maxErrorBody = 200

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
	URL    string
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s for url: %s", e.Status, e.URL)
	if e.Body != "" {
		msg += " (" + e.Body + ")"
	}
	return msg
}

func newStatusError(code int, status, url string, body []byte) *StatusError {
	if status == "" {
		status = fmt.Sprintf("%d", code)
	}
	snippet := runewidth.Truncate(strings.TrimSpace(string(body)), maxErrorBody, "...")
	return &StatusError{
		Code:   code,
		Status: status,
		URL:    url,
		Body:   snippet,
	}
}
