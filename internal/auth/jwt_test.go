package auth

import (
	"testing"

	"lead-backend/internal/config"
	"lead-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 24
	cfg.JWT.Issuer = "lead-backend"
	return cfg
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager(testConfig("test-secret"))

	user := &models.User{
		ID:       7,
		Email:    "broker@example.com",
		Role:     "broker",
		IsActive: true,
	}

	token, err := manager.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "broker@example.com", claims.Email)
	assert.Equal(t, "broker", claims.Role)
	assert.True(t, claims.IsActive)
	assert.Equal(t, "lead-backend", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager(testConfig("secret-one"))
	other := NewJWTManager(testConfig("secret-two"))

	token, err := manager.GenerateToken(&models.User{ID: 1, Email: "a@b.c", Role: "admin"})
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	manager := NewJWTManager(testConfig("test-secret"))

	_, err := manager.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	cfg := testConfig("test-secret")
	cfg.JWT.ExpirationHours = -1
	manager := NewJWTManager(cfg)

	token, err := manager.GenerateToken(&models.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}
