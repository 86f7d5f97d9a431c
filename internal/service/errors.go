package service

import (
	"errors"
	"net/http"
)

// Error is a failure the caller caused. It carries the HTTP status and the
// message shown to the client. Anything that isn't an *Error is internal
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on status and message so wrapped sentinels compare equal
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Status == t.Status && e.Message == t.Message
}

var (
	ErrUsernameTaken      = &Error{Status: http.StatusBadRequest, Message: "User with username already exists"}
	ErrEmailTaken         = &Error{Status: http.StatusBadRequest, Message: "User with email already exists"}
	ErrAccountNotFound    = &Error{Status: http.StatusNotFound, Message: "User does not exists"}
	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Message: "Invalid User password"}
	ErrInvalidOTP         = &Error{Status: http.StatusBadRequest, Message: "Invalid OTP"}
	ErrInvalidLoginOTP    = &Error{Status: http.StatusBadRequest, Message: "Invalid or expired OTP"}
	ErrInvalidResetToken  = &Error{Status: http.StatusBadRequest, Message: "Invalid or expired token"}
)

// Validation wraps a malformed input error. Validation always happens before
// anything is written
func Validation(err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
}

// AsError returns the *Error inside err, if any
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}
