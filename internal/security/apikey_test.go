package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKeyFormat(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "ApiKey "))

	// 两次生成互不相同
	other, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestAPIKeyHashAndCheck(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	hash, err := HashAPIKey(key)
	require.NoError(t, err)
	assert.NotEqual(t, key, hash)

	assert.True(t, CheckAPIKey(key, hash))
	assert.False(t, CheckAPIKey("ApiKey wrong", hash))
}

func TestAPIKeyPrefix(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	prefix := APIKeyPrefix(key)
	assert.Len(t, prefix, APIKeyPrefixLen)
	assert.True(t, strings.HasPrefix(key, prefix))

	assert.Equal(t, "short", APIKeyPrefix("short"))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("hunter2hunter2", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("unit-test-secret", time.Hour)

	token, err := issuer.Generate(42)
	require.NoError(t, err)

	userID, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenIssuerRejectsForeignToken(t *testing.T) {
	issuer := NewTokenIssuer("unit-test-secret", time.Hour)
	foreign := NewTokenIssuer("another-secret", time.Hour)

	token, err := foreign.Generate(42)
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err)
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("unit-test-secret", -time.Minute)

	token, err := issuer.Generate(42)
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err)
}
