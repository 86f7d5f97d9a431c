package service

import (
	"bitwise74/auth-api/internal/model"
	"context"
	"errors"
	"fmt"
)

var (
	errUserIDRequired = errors.New("User ID is required")
	errOTPRequired    = errors.New("OTP is required")
)

// VerifyEmail marks the account as verified when otp equals the code sent at
// registration. The code has no expiry
func (m *CredentialManager) VerifyEmail(ctx context.Context, accountID uint, otp int) (err error) {
	defer func() { m.metrics.Event("verify_email", err) }()

	if otp == 0 {
		return Validation(errOTPRequired)
	}

	if accountID == 0 {
		return Validation(errUserIDRequired)
	}

	db := m.db.WithContext(ctx)

	acct, err := m.findAccount(db, "id = ?", accountID)
	if err != nil {
		return err
	}

	if acct.OTP == nil || *acct.OTP != otp {
		return ErrInvalidOTP
	}

	err = db.
		Model(&model.Account{}).
		Where("id = ?", acct.ID).
		Update("email_verified", true).
		Error
	if err != nil {
		return fmt.Errorf("failed to verify account, %w", err)
	}

	m.accountChanged(acct.ID)
	return nil
}
