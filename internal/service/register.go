package service

import (
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/pkg/security"
	"bitwise74/auth-api/pkg/validators"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Fullname string
	Email    string
	Username string
	Password string
	Image    *validators.Image // Optional profile picture
}

func (in *RegisterInput) validate() error {
	if err := validators.FullnameValidator(in.Fullname); err != nil {
		return err
	}

	if err := validators.EmailValidator(in.Email); err != nil {
		return err
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return err
	}

	return validators.UsernameValidator(in.Username)
}

// Register creates an unverified account and mails it a verification code.
// The mail and the profile picture upload happen in the background, their
// failure doesn't undo the account
func (m *CredentialManager) Register(ctx context.Context, in RegisterInput) (id uint, err error) {
	defer func() { m.metrics.Event("register", err) }()

	if err := in.validate(); err != nil {
		return 0, Validation(err)
	}

	db := m.db.WithContext(ctx)

	taken, err := m.exists(db, "username = ?", in.Username)
	if err != nil {
		return 0, fmt.Errorf("failed to check if username is taken, %w", err)
	}

	if taken {
		return 0, ErrUsernameTaken
	}

	taken, err = m.exists(db, "email = ?", in.Email)
	if err != nil {
		return 0, fmt.Errorf("failed to check if email is taken, %w", err)
	}

	if taken {
		return 0, ErrEmailTaken
	}

	hash, err := m.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password, %w", err)
	}

	otp, err := security.NewOTP()
	if err != nil {
		return 0, fmt.Errorf("failed to generate otp, %w", err)
	}

	acct := &model.Account{
		Fullname:      in.Fullname,
		Username:      in.Username,
		Email:         in.Email,
		Password:      hash,
		EmailVerified: false,
		OTP:           &otp,
	}

	if err := db.Create(acct).Error; err != nil {
		// Someone registered the same username or email between the checks
		// above and the insert. The unique indexes decide who wins
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, m.conflict(m.db.WithContext(ctx), in.Username)
		}

		return 0, fmt.Errorf("failed to create account, %w", err)
	}

	m.send("verification_mail", verificationMail(acct.Email, acct.Fullname, acct.ID, otp, m.links))

	if in.Image != nil {
		m.uploadProfilePicture(acct.ID, in.Image)
	}

	return acct.ID, nil
}

func (m *CredentialManager) conflict(db *gorm.DB, username string) error {
	taken, err := m.exists(db, "username = ?", username)
	if err == nil && !taken {
		return ErrEmailTaken
	}

	return ErrUsernameTaken
}

func (m *CredentialManager) uploadProfilePicture(accountID uint, img *validators.Image) {
	if m.images == nil {
		zap.L().Warn("No image store configured, dropping profile picture", zap.Uint("account_id", accountID))
		return
	}

	m.dispatcher.Dispatch("profile_picture", func(ctx context.Context) error {
		url, err := m.images.Upload(ctx, avatarKey(img.Extension), img.ContentType, img.Data)
		if err != nil {
			return err
		}

		err = m.db.
			WithContext(ctx).
			Model(&model.Account{}).
			Where("id = ?", accountID).
			Update("profile_picture", url).
			Error
		if err != nil {
			return err
		}

		m.accountChanged(accountID)
		return nil
	})
}
