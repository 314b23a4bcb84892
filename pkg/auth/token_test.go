package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hngo-dev/meshmart-backend/pkg/config"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-not-for-production",
		Issuer:            "meshmart",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleSeller,
		Email:  "seller@example.com",
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, payload.UserID, claims.UserID)
	assert.Equal(t, payload.Role, claims.Role)
	assert.Equal(t, payload.Email, claims.Email)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(), Role: enums.UserRoleBuyer, Email: "b@example.com",
	})
	require.NoError(t, err)

	other := cfg
	other.Secret = "another-secret"
	_, err = ParseAccessToken(other, token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(), Role: enums.UserRoleBuyer, Email: "b@example.com",
	})
	require.NoError(t, err)

	other := cfg
	other.Issuer = "someone-else"
	_, err = ParseAccessToken(other, token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: uuid.New(), Role: enums.UserRoleBuyer, Email: "b@example.com",
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	_, err := ParseAccessToken(testJWTConfig(), "not-a-jwt")
	require.Error(t, err)
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now()
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleBuyer}

	cfg := testJWTConfig()
	cfg.Secret = ""
	_, err := MintAccessToken(cfg, now, payload)
	require.Error(t, err)

	cfg = testJWTConfig()
	cfg.Issuer = ""
	_, err = MintAccessToken(cfg, now, payload)
	require.Error(t, err)

	cfg = testJWTConfig()
	cfg.ExpirationMinutes = 0
	_, err = MintAccessToken(cfg, now, payload)
	require.Error(t, err)

	_, err = MintAccessToken(testJWTConfig(), now, AccessTokenPayload{
		UserID: uuid.New(), Role: enums.UserRole("superuser"),
	})
	require.Error(t, err)
}
