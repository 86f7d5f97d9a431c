package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastArgon() *ArgonHash {
	a := New()
	a.Memory = 8 * 1024
	a.Iterations = 1
	return a
}

func TestArgonHashRoundTrip(t *testing.T) {
	a := fastArgon()

	hash, err := a.Hash("secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=2$"))
	assert.NotContains(t, hash, "secret123")

	ok, err := a.Verify("secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Verify("secret124", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgonHashIsSalted(t *testing.T) {
	a := fastArgon()

	h1, err := a.Hash("secret123")
	require.NoError(t, err)
	h2, err := a.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgonVerifyUsesStoredParameters(t *testing.T) {
	hash, err := fastArgon().Hash("secret123")
	require.NoError(t, err)

	ok, err := New().Verify("secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgonVerifyRejectsGarbage(t *testing.T) {
	a := fastArgon()

	for _, h := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=2$!!!$aGFzaA",
	} {
		_, err := a.Verify("secret123", h)
		assert.ErrorIs(t, err, ErrInvalidHash, h)
	}

	_, err := a.Verify("secret123", "$argon2id$v=16$m=8192,t=1,p=2$c2FsdA$aGFzaA")
	assert.Error(t, err)
}
