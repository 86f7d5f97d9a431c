package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLen = 5
	maxUsernameLen = 12
)

var (
	ErrUsernameEmpty    = errors.New("username is required.")
	ErrUsernameTooShort = errors.New("username must contain atleast 5 characters")
	ErrUsernameTooLong  = errors.New("username must not be long than 12 characters")
	ErrFullnameEmpty    = errors.New("full name is required")
)

func UsernameValidator(u string) error {
	if u == "" {
		return ErrUsernameEmpty
	}

	n := utf8.RuneCountInString(u)

	if n < minUsernameLen {
		return ErrUsernameTooShort
	}

	if n > maxUsernameLen {
		return ErrUsernameTooLong
	}

	return nil
}

func FullnameValidator(n string) error {
	if strings.TrimSpace(n) == "" {
		return ErrFullnameEmpty
	}

	return nil
}
