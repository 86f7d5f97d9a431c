package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "alice1", "alice@example.com")
	ctx := context.Background()

	require.NoError(t, env.m.ForgotPassword(ctx, "alice@example.com"))

	acct := env.account(t, id)
	require.NotNil(t, acct.ResetToken)
	require.NotNil(t, acct.ResetTokenExpiry)
	assert.Len(t, *acct.ResetToken, 64)
	assert.True(t, acct.ResetTokenExpiry.Equal(testNow.Add(ResetTokenTTL)))

	token := *acct.ResetToken
	assert.Contains(t, env.mailer.last(t).HTML, "http://app.test/reset-password?token="+token)

	require.NoError(t, env.m.ResetPassword(ctx, token, "newpass1"))

	acct = env.account(t, id)
	assert.Equal(t, "hashed:newpass1", acct.Password)
	assert.Nil(t, acct.ResetToken)
	assert.Nil(t, acct.ResetTokenExpiry)

	// Single use
	require.ErrorIs(t, env.m.ResetPassword(ctx, token, "other12"), ErrInvalidResetToken)

	_, err := env.m.Login(ctx, "alice1", "newpass1")
	require.NoError(t, err)

	_, err = env.m.Login(ctx, "alice1", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestForgotPasswordReplacesToken(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "alice1", "alice@example.com")
	ctx := context.Background()

	require.NoError(t, env.m.ForgotPassword(ctx, "alice@example.com"))
	old := *env.account(t, id).ResetToken

	require.NoError(t, env.m.ForgotPassword(ctx, "alice@example.com"))
	assert.NotEqual(t, old, *env.account(t, id).ResetToken)

	require.ErrorIs(t, env.m.ResetPassword(ctx, old, "newpass1"), ErrInvalidResetToken)
}

func TestResetPasswordExpiryIsStrict(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr bool
	}{
		{name: "before expiry", advance: ResetTokenTTL - time.Second},
		{name: "at expiry", advance: ResetTokenTTL, wantErr: true},
		{name: "after expiry", advance: ResetTokenTTL + time.Minute, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			id := env.register(t, "alice1", "alice@example.com")
			ctx := context.Background()

			require.NoError(t, env.m.ForgotPassword(ctx, "alice@example.com"))
			token := *env.account(t, id).ResetToken

			env.clock.Advance(tt.advance)

			err := env.m.ResetPassword(ctx, token, "newpass1")
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidResetToken)
				assert.Equal(t, "hashed:secret123", env.account(t, id).Password)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestResetPasswordValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.m.ResetPassword(ctx, "", "newpass1")
	require.Error(t, err)
	assert.Equal(t, "Token and new password are required", err.Error())

	err = env.m.ResetPassword(ctx, "token", "")
	require.Error(t, err)
	assert.Equal(t, "Token and new password are required", err.Error())

	err = env.m.ResetPassword(ctx, "token", "123")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, 400, e.Status)

	require.ErrorIs(t, env.m.ResetPassword(ctx, "unknown", "newpass1"), ErrInvalidResetToken)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	require.ErrorIs(t, env.m.ForgotPassword(context.Background(), "ghost@example.com"), ErrAccountNotFound)
}
