package service

import (
	"bitwise74/auth-api/db"
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/pkg/security"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeMailer) last(t *testing.T) Message {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.sent, "no mail was sent")
	return f.sent[len(f.sent)-1]
}

type fakeImages struct {
	keys []string
	err  error
}

func (f *fakeImages) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

// plainHasher keeps the tests fast, argon2 is covered in pkg/security
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) {
	return "hashed:" + p, nil
}

func (plainHasher) Verify(p, encoded string) (bool, error) {
	if !strings.HasPrefix(encoded, "hashed:") {
		return false, errors.New("bad hash")
	}

	return encoded == "hashed:"+p, nil
}

type testEnv struct {
	m      *CredentialManager
	db     *gorm.DB
	clock  *fakeClock
	mailer *fakeMailer
	images *fakeImages
	tokens *security.TokenIssuer

	mu      sync.Mutex
	changed []uint
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		db:     conn,
		clock:  &fakeClock{t: testNow},
		mailer: &fakeMailer{},
		images: &fakeImages{},
		tokens: security.NewTokenIssuer("access-secret", "refresh-secret"),
	}

	env.m = NewCredentialManager(Options{
		DB:         conn,
		Hasher:     plainHasher{},
		Tokens:     env.tokens,
		Mailer:     env.mailer,
		Images:     env.images,
		Dispatcher: InlineDispatcher{},
		Links: Links{
			VerifyEmail:   "http://app.test/verify-email",
			ResetPassword: "http://app.test/reset-password",
		},
		Now: env.clock.Now,

		AccountChanged: func(id uint) {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.changed = append(env.changed, id)
		},
	})

	return env
}

func (e *testEnv) register(t *testing.T, username, email string) uint {
	t.Helper()

	id, err := e.m.Register(context.Background(), RegisterInput{
		Fullname: "Test User",
		Email:    email,
		Username: username,
		Password: "secret123",
	})
	require.NoError(t, err)

	return id
}

func (e *testEnv) account(t *testing.T, id uint) *model.Account {
	t.Helper()

	var acct model.Account
	require.NoError(t, e.db.First(&acct, id).Error)

	return &acct
}

func (e *testEnv) passcodes(t *testing.T, id uint) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(&model.OneTimePasscode{}).Where("account_id = ?", id).Count(&n).Error)

	return n
}
