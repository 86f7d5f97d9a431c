package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("while logging in, %w", ErrInvalidCredentials)

	assert.ErrorIs(t, wrapped, ErrInvalidCredentials)
	assert.NotErrorIs(t, wrapped, ErrAccountNotFound)

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 401, e.Status)

	_, ok = AsError(errors.New("disk on fire"))
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	cause := errors.New("email is required")
	err := Validation(cause)

	assert.Equal(t, 400, err.Status)
	assert.Equal(t, "email is required", err.Error())
	assert.ErrorIs(t, err, cause)
}
