package service

import (
	"bitwise74/auth-api/internal/metrics"
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/pkg/security"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	LoginOTPTTL   = 5 * time.Minute
	ResetTokenTTL = 15 * time.Minute
)

type PasswordHasher interface {
	Hash(p string) (string, error)
	Verify(p, encoded string) (bool, error)
}

// Options are the long lived collaborators of a CredentialManager. They are
// built once at startup and shared by every request
type Options struct {
	DB         *gorm.DB
	Hasher     PasswordHasher
	Tokens     *security.TokenIssuer
	Mailer     Mailer
	Images     ImageStore // Optional, uploads are skipped when nil
	Dispatcher Dispatcher
	Links      Links
	Metrics    *metrics.Metrics
	Now        func() time.Time

	// AccountChanged is told when the public view of an account changes
	AccountChanged func(id uint)
}

// CredentialManager applies the account lifecycle rules: registration, email
// verification, password and OTP logins, logout and password recovery
type CredentialManager struct {
	db         *gorm.DB
	hasher     PasswordHasher
	tokens     *security.TokenIssuer
	mailer     Mailer
	images     ImageStore
	dispatcher Dispatcher
	links      Links
	metrics    *metrics.Metrics
	now        func() time.Time

	accountChanged func(id uint)
}

func NewCredentialManager(o Options) *CredentialManager {
	m := &CredentialManager{
		db:         o.DB,
		hasher:     o.Hasher,
		tokens:     o.Tokens,
		mailer:     o.Mailer,
		images:     o.Images,
		dispatcher: o.Dispatcher,
		links:      o.Links,
		metrics:    o.Metrics,
		now:        o.Now,

		accountChanged: o.AccountChanged,
	}

	// Stored timestamps are compared as text by sqlite, keep them in one zone
	if m.now == nil {
		m.now = func() time.Time { return time.Now().UTC() }
	}

	if m.dispatcher == nil {
		m.dispatcher = InlineDispatcher{}
	}

	if m.mailer == nil {
		m.mailer = LogMailer{}
	}

	if m.accountChanged == nil {
		m.accountChanged = func(uint) {}
	}

	return m
}

// Session is the result of a successful login
type Session struct {
	AccessToken  string
	RefreshToken string
	Account      model.PublicAccount
}

// startSession issues a new token pair and stores the refresh token, which
// replaces whatever token the account had before
func (m *CredentialManager) startSession(db *gorm.DB, acct *model.Account) (*Session, error) {
	pair, err := m.tokens.Issue(acct.ID, acct.Email, acct.Username)
	if err != nil {
		return nil, err
	}

	err = db.
		Model(&model.Account{}).
		Where("id = ?", acct.ID).
		Update("refresh_token", pair.RefreshToken).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token, %w", err)
	}

	acct.RefreshToken = &pair.RefreshToken

	return &Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Account:      acct.Sanitize(),
	}, nil
}

func (m *CredentialManager) findAccount(db *gorm.DB, query string, args ...any) (*model.Account, error) {
	var acct model.Account

	err := db.Where(query, args...).First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, fmt.Errorf("failed to find account, %w", err)
	}

	return &acct, nil
}

func (m *CredentialManager) exists(db *gorm.DB, query string, args ...any) (bool, error) {
	var n int64

	err := db.
		Model(&model.Account{}).
		Where(query, args...).
		Count(&n).
		Error
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// send hands a mail to the dispatcher. Delivery failures are only logged
func (m *CredentialManager) send(name string, msg Message) {
	m.dispatcher.Dispatch(name, func(ctx context.Context) error {
		return m.mailer.Send(ctx, msg)
	})
}
