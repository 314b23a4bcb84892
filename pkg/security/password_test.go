package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hngo-dev/meshmart-backend/pkg/config"
)

func testPasswordConfig() config.PasswordConfig {
	// Deliberately cheap parameters; production values come from env.
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := testPasswordConfig()

	hash, err := HashPassword("correct horse battery staple", cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	cfg := testPasswordConfig()

	first, err := HashPassword("same input", cfg)
	require.NoError(t, err)
	second, err := HashPassword("same input", cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("", testPasswordConfig())
	require.Error(t, err)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=8,t=1,p=999$c2FsdA$aGFzaA",
	}
	for _, encoded := range cases {
		_, err := VerifyPassword("anything", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, encoded)
	}
}

func TestVerifyHonorsEmbeddedParams(t *testing.T) {
	// Verification reads the parameters embedded in the hash string, so
	// hashes minted under older settings keep verifying after a config
	// change.
	older := config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        2,
		ArgonParallelism: 2,
		ArgonSaltLen:     16,
		ArgonKeyLen:      16,
	}
	hash, err := HashPassword("stable", older)
	require.NoError(t, err)

	ok, err := VerifyPassword("stable", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
