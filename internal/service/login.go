package service

import (
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/pkg/validators"
	"context"
	"errors"
	"fmt"
)

// Login checks a username/password pair and starts a new session. A failed
// attempt leaves the stored refresh token untouched
func (m *CredentialManager) Login(ctx context.Context, username, password string) (s *Session, err error) {
	defer func() { m.metrics.Event("login", err) }()

	if err := validators.UsernameValidator(username); err != nil {
		return nil, Validation(err)
	}

	if err := validators.PasswordValidator(password); err != nil {
		return nil, Validation(err)
	}

	db := m.db.WithContext(ctx)

	acct, err := m.findAccount(db, "username = ?", username)
	if err != nil {
		return nil, err
	}

	ok, err := m.hasher.Verify(password, acct.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	return m.startSession(db, acct)
}

type LogoutResult int

const (
	// LogoutNoToken means the caller sent no refresh token
	LogoutNoToken LogoutResult = iota
	// LogoutUnknownToken means no account holds the refresh token
	LogoutUnknownToken
	LogoutDone
)

// Logout forgets the refresh token of the account that holds it
func (m *CredentialManager) Logout(ctx context.Context, refreshToken string) (r LogoutResult, err error) {
	defer func() { m.metrics.Event("logout", err) }()

	if refreshToken == "" {
		return LogoutNoToken, nil
	}

	db := m.db.WithContext(ctx)

	acct, err := m.findAccount(db, "refresh_token = ?", refreshToken)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return LogoutUnknownToken, nil
		}

		return 0, err
	}

	err = db.
		Model(&model.Account{}).
		Where("id = ?", acct.ID).
		Update("refresh_token", nil).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to clear refresh token, %w", err)
	}

	return LogoutDone, nil
}
