package service

import (
	"bitwise74/auth-api/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latestCode(t *testing.T, env *testEnv, id uint) model.OneTimePasscode {
	t.Helper()

	var p model.OneTimePasscode
	require.NoError(t, env.db.Where("account_id = ?", id).Order("id desc").First(&p).Error)

	return p
}

func TestSendLoginOTP(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "alice1", "alice@example.com")

	require.NoError(t, env.m.SendLoginOTP(context.Background(), "alice@example.com"))

	p := latestCode(t, env, id)
	assert.True(t, p.ExpiresAt.Equal(testNow.Add(LoginOTPTTL)))
	assert.GreaterOrEqual(t, p.Code, 100000)

	mail := env.mailer.last(t)
	assert.Equal(t, "OTP for login", mail.Subject)
	assert.Contains(t, mail.HTML, "<b>")
}

func TestSendLoginOTPUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.m.SendLoginOTP(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestVerifyLoginOTPConsumesEveryCode(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "alice1", "alice@example.com")
	ctx := context.Background()

	require.NoError(t, env.m.SendLoginOTP(ctx, "alice@example.com"))
	first := latestCode(t, env, id)
	require.NoError(t, env.m.SendLoginOTP(ctx, "alice@example.com"))
	second := latestCode(t, env, id)
	require.EqualValues(t, 2, env.passcodes(t, id))

	// Earlier codes stay valid while the later one is outstanding
	s, err := env.m.VerifyLoginOTP(ctx, "alice@example.com", first.Code)
	require.NoError(t, err)
	assert.Equal(t, id, s.Account.ID)
	assert.Equal(t, s.RefreshToken, *env.account(t, id).RefreshToken)
	assert.Zero(t, env.passcodes(t, id))

	_, err = env.m.VerifyLoginOTP(ctx, "alice@example.com", second.Code)
	require.ErrorIs(t, err, ErrInvalidLoginOTP)
}

func TestVerifyLoginOTPExpiry(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "alice1", "alice@example.com")
	ctx := context.Background()

	require.NoError(t, env.m.SendLoginOTP(ctx, "alice@example.com"))
	p := latestCode(t, env, id)

	// Accepted only strictly before expiresAt
	env.clock.Advance(LoginOTPTTL)

	_, err := env.m.VerifyLoginOTP(ctx, "alice@example.com", p.Code)
	require.ErrorIs(t, err, ErrInvalidLoginOTP)
	assert.EqualValues(t, 1, env.passcodes(t, id))
}

func TestVerifyLoginOTPJustBeforeExpiry(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "alice1", "alice@example.com")
	ctx := context.Background()

	require.NoError(t, env.m.SendLoginOTP(ctx, "alice@example.com"))
	p := latestCode(t, env, id)

	env.clock.Advance(LoginOTPTTL - time.Second)

	_, err := env.m.VerifyLoginOTP(ctx, "alice@example.com", p.Code)
	require.NoError(t, err)
}

func TestVerifyLoginOTPWrongCode(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "alice1", "alice@example.com")
	ctx := context.Background()

	require.NoError(t, env.m.SendLoginOTP(ctx, "alice@example.com"))
	p := latestCode(t, env, id)

	_, err := env.m.VerifyLoginOTP(ctx, "alice@example.com", p.Code+1)
	require.ErrorIs(t, err, ErrInvalidLoginOTP)
	assert.EqualValues(t, 1, env.passcodes(t, id))
	assert.Nil(t, env.account(t, id).RefreshToken)
}

func TestVerifyLoginOTPCodesArePerAccount(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice1", "alice@example.com")
	env.register(t, "bobby", "bob@example.com")
	ctx := context.Background()

	require.NoError(t, env.m.SendLoginOTP(ctx, "alice@example.com"))
	p := latestCode(t, env, alice)

	_, err := env.m.VerifyLoginOTP(ctx, "bob@example.com", p.Code)
	require.ErrorIs(t, err, ErrInvalidLoginOTP)
}
