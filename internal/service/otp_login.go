package service

import (
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/pkg/security"
	"bitwise74/auth-api/pkg/validators"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// SendLoginOTP stores a new login code valid for five minutes and mails it.
// Codes requested earlier stay valid
func (m *CredentialManager) SendLoginOTP(ctx context.Context, email string) (err error) {
	defer func() { m.metrics.Event("send_otp", err) }()

	if err := validators.EmailValidator(email); err != nil {
		return Validation(err)
	}

	db := m.db.WithContext(ctx)

	acct, err := m.findAccount(db, "email = ?", email)
	if err != nil {
		return err
	}

	code, err := security.NewOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp, %w", err)
	}

	err = db.Create(&model.OneTimePasscode{
		AccountID: acct.ID,
		Code:      code,
		ExpiresAt: m.now().Add(LoginOTPTTL),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to store otp, %w", err)
	}

	m.send("login_otp_mail", loginOTPMail(acct.Email, acct.Fullname, code))

	return nil
}

// VerifyLoginOTP starts a session when otp matches any unexpired code of the
// account. Every outstanding code of the account is deleted on success
func (m *CredentialManager) VerifyLoginOTP(ctx context.Context, email string, otp int) (s *Session, err error) {
	defer func() { m.metrics.Event("verify_otp", err) }()

	if err := validators.EmailValidator(email); err != nil {
		return nil, Validation(err)
	}

	if otp == 0 {
		return nil, Validation(errOTPRequired)
	}

	db := m.db.WithContext(ctx)

	acct, err := m.findAccount(db, "email = ?", email)
	if err != nil {
		return nil, err
	}

	var candidates []model.OneTimePasscode

	err = db.
		Where("account_id = ? AND code = ?", acct.ID, otp).
		Find(&candidates).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up otp, %w", err)
	}

	now := m.now()
	valid := false

	for _, c := range candidates {
		if c.Valid(now) {
			valid = true
			break
		}
	}

	if !valid {
		return nil, ErrInvalidLoginOTP
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("account_id = ?", acct.ID).
			Delete(&model.OneTimePasscode{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete otps, %w", res.Error)
		}

		// A concurrent verification consumed the codes first
		if res.RowsAffected == 0 {
			return ErrInvalidLoginOTP
		}

		s, err = m.startSession(tx, acct)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}
