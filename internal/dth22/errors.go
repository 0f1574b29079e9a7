package dth22

import "errors"

// ErrReadingNotFound is returned when a reading ID does not exist.
var ErrReadingNotFound = errors.New("dth22: reading not found")

// Client-facing validation messages.
const (
	MsgFieldsRequired = "Semua field harus diisi"
	MsgIDRequired     = "ID harus disertakan"
	MsgIDInvalid      = "ID tidak valid"
	MsgInvalidBody    = "Body harus berupa objek JSON"
)

// ValidationError reports a request body that cannot be stored.
// Message is safe to return to the client verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "dth22: " + e.Message
	}
	return "dth22: " + e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
