package upstream

import (
	"errors"
	"fmt"
)

// Error describes a failed upstream call. Transient errors (network failures,
// timeouts and 5xx responses) are retried; the rest are terminal.
type Error struct {
	Code      string
	Message   string
	Endpoint  string
	Status    int
	Details   string
	Err       error
	Transient bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is an upstream failure worth retrying.
func IsTransient(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Transient
}

// IsPermanent reports whether err is an upstream failure that must not be
// retried, such as a 4xx response.
func IsPermanent(err error) bool {
	var e *Error
	return errors.As(err, &e) && !e.Transient
}

// CodeOf returns the error code of an upstream error, or "" for other errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
