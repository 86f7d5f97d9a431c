package service

import (
	"bitwise74/auth-api/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupExpired(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice1", "alice@example.com")
	bob := env.register(t, "bobby", "bob@example.com")
	ctx := context.Background()

	require.NoError(t, env.db.Create(&[]model.OneTimePasscode{
		{AccountID: alice, Code: 111111, ExpiresAt: testNow.Add(-time.Minute)},
		{AccountID: alice, Code: 222222, ExpiresAt: testNow},
		{AccountID: alice, Code: 333333, ExpiresAt: testNow.Add(time.Minute)},
	}).Error)

	require.NoError(t, env.m.ForgotPassword(ctx, "alice@example.com"))
	require.NoError(t, env.m.ForgotPassword(ctx, "bob@example.com"))

	// Bob's token is the only one in the past at cleanup time
	require.NoError(t, env.db.Model(&model.Account{}).
		Where("id = ?", bob).
		Update("reset_token_expiry", testNow.Add(-time.Second)).Error)

	r, err := CleanupExpired(ctx, env.db, testNow)
	require.NoError(t, err)
	assert.EqualValues(t, 2, r.Passcodes)
	assert.EqualValues(t, 1, r.ResetTokens)

	assert.EqualValues(t, 1, env.passcodes(t, alice))
	assert.NotNil(t, env.account(t, alice).ResetToken)
	assert.Nil(t, env.account(t, bob).ResetToken)
	assert.Nil(t, env.account(t, bob).ResetTokenExpiry)
}

func TestTokenCleanupRejectsBadSchedule(t *testing.T) {
	env := newTestEnv(t)

	_, err := TokenCleanup("every now and then", env.db)
	require.Error(t, err)

	c, err := TokenCleanup("@every 1h", env.db)
	require.NoError(t, err)
	<-c.Stop().Done()
}
