package validators

import (
	"errors"
	"unicode/utf8"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 12
)

var (
	ErrPasswordEmpty    = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be of atleast 6 characters.")
	ErrPasswordTooLong  = errors.New("password must not be long than 12 characters")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	// Lengths are in characters, not bytes
	n := utf8.RuneCountInString(p)

	if n < minPasswordLen {
		return ErrPasswordTooShort
	}

	if n > maxPasswordLen {
		return ErrPasswordTooLong
	}

	return nil
}
