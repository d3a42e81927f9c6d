package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrCanceled is returned when a request was abandoned by its caller or by
// Manager.Close. It is never recorded as the manager's error.
var ErrCanceled = errors.New("httpclient: request canceled")

// HTTPError is a non-2xx response. Message is the server's "message" field
// when it sent one.
type HTTPError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// HTTPStatusCode lets httpx classify the failure.
func (e *HTTPError) HTTPStatusCode() int { return e.Status }

func newHTTPError(status int, raw []byte) *HTTPError {
	var body struct {
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = strings.TrimSpace(body.Message)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: msg, Body: raw}
}
