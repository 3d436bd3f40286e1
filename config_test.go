package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tiendago/auth"
)

func TestConfigWithDefaults(t *testing.T) {
	cfg := auth.Config{SigningKey: "secret"}.WithDefaults()

	assert.Equal(t, 2, cfg.TokenExpiration)
	assert.Equal(t, "user", cfg.ContextKey)
	assert.Equal(t, "header:Authorization", cfg.TokenLookup)
	assert.Equal(t, "Bearer", cfg.AuthScheme)
	assert.Equal(t, auth.RoleUser, cfg.DefaultRole)
}

func TestConfigWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := auth.Config{
		SigningKey:      "secret",
		TokenExpiration: 24,
		ContextKey:      "identity",
		AuthScheme:      "Token",
	}.WithDefaults()

	assert.Equal(t, 24, cfg.TokenExpiration)
	assert.Equal(t, "identity", cfg.ContextKey)
	assert.Equal(t, "Token", cfg.AuthScheme)
}

func TestConfigValidate(t *testing.T) {
	t.Run("requires signing key", func(t *testing.T) {
		err := auth.Config{}.Validate()
		assert.Error(t, err)
	})

	t.Run("rejects negative expiration", func(t *testing.T) {
		err := auth.Config{SigningKey: "secret", TokenExpiration: -1}.Validate()
		assert.Error(t, err)
	})

	t.Run("accepts complete config", func(t *testing.T) {
		err := auth.Config{SigningKey: "secret", TokenExpiration: 2}.Validate()
		assert.NoError(t, err)
	})
}
