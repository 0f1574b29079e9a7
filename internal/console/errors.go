package console

import (
	"errors"
	"fmt"
)

// Sentinel errors for session state.
var (
	// ErrBusy is returned when an operation starts while another is running.
	ErrBusy = errors.New("console: another operation is in progress")

	// ErrNotConnected is returned by operations that need a connected session.
	ErrNotConnected = errors.New("console: not connected")

	// ErrResponseTooLarge is returned when a response body exceeds the read limit.
	ErrResponseTooLarge = errors.New("response too large")
)

// Validation messages shown to the user.
const (
	MsgURLRequired    = "Please enter API URL"
	MsgURLInvalid     = "Please enter a valid URL"
	MsgFieldsRequired = "Please add at least one field with data"
)

// NotJSON reasons.
const (
	ReasonHTMLPage    = "html-page"
	ReasonUnparseable = "unparseable"
)

// previewLength bounds body excerpts in error messages.
const previewLength = 100

// NetworkError is a transport failure: DNS, refused connection, TLS, timeout.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is a response with a status outside [200,300).
// Detail holds an excerpt of the error body when one was read.
type HTTPStatusError struct {
	Method     string
	Status     int
	StatusText string
	Detail     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.StatusText)
}

// NotJSONError is a successful response whose body is not JSON.
type NotJSONError struct {
	Reason  string
	Preview string
}

func (e *NotJSONError) Error() string {
	if e.Reason == ReasonHTMLPage {
		return "API returned HTML instead of JSON. Please check if the URL is correct and points to a JSON API endpoint."
	}
	return fmt.Sprintf("API returned non-JSON content: %s...", e.Preview)
}

// ValidationError is invalid user input caught before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// excerpt returns at most previewLength runes of s.
func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLength {
		return s
	}
	return string(runes[:previewLength])
}
