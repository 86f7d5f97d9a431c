package service

import (
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/pkg/security"
	"bitwise74/auth-api/pkg/validators"
	"context"
	"errors"
	"fmt"
)

var errResetInputRequired = errors.New("Token and new password are required")

// ForgotPassword stores a fresh reset token on the account and mails a link
// containing it. Requesting again replaces the previous token
func (m *CredentialManager) ForgotPassword(ctx context.Context, email string) (err error) {
	defer func() { m.metrics.Event("forgot_password", err) }()

	if err := validators.EmailValidator(email); err != nil {
		return Validation(err)
	}

	db := m.db.WithContext(ctx)

	acct, err := m.findAccount(db, "email = ?", email)
	if err != nil {
		return err
	}

	token, err := security.NewResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token, %w", err)
	}

	expiry := m.now().Add(ResetTokenTTL)

	err = db.
		Model(&model.Account{}).
		Where("id = ?", acct.ID).
		Updates(map[string]any{
			"reset_token":        token,
			"reset_token_expiry": expiry,
		}).
		Error
	if err != nil {
		return fmt.Errorf("failed to store reset token, %w", err)
	}

	m.send("reset_password_mail", resetPasswordMail(acct.Email, acct.Fullname, token, m.links))

	return nil
}

// ResetPassword replaces the password of the account holding token. The token
// is accepted strictly before its expiry and only once
func (m *CredentialManager) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	defer func() { m.metrics.Event("reset_password", err) }()

	if token == "" || newPassword == "" {
		return Validation(errResetInputRequired)
	}

	if err := validators.PasswordValidator(newPassword); err != nil {
		return Validation(err)
	}

	db := m.db.WithContext(ctx)

	acct, err := m.findAccount(db, "reset_token = ?", token)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrInvalidResetToken
		}

		return err
	}

	if acct.ResetTokenExpiry == nil || !m.now().Before(*acct.ResetTokenExpiry) {
		return ErrInvalidResetToken
	}

	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	// Matching on the token too makes a second concurrent reset a no-op
	res := db.
		Model(&model.Account{}).
		Where("id = ? AND reset_token = ?", acct.ID, token).
		Updates(map[string]any{
			"password":           hash,
			"reset_token":        nil,
			"reset_token_expiry": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update password, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrInvalidResetToken
	}

	return nil
}
