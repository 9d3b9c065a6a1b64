package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewAuthServiceRejectsShortSecret(t *testing.T) {
	_, err := NewAuthService("short", time.Hour)
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	auth, err := NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := auth.GenerateToken("settings-ui")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "settings-ui", claims.Client)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	signer, err := NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)
	verifier, err := NewAuthService(strings.Repeat("z", 32), time.Hour)
	require.NoError(t, err)

	token, err := signer.GenerateToken("ui")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	auth, err := NewAuthService(testSecret, time.Minute)
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	auth.now = func() time.Time { return issued }
	token, err := auth.GenerateToken("ui")
	require.NoError(t, err)

	auth.now = time.Now
	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestNilAuthService(t *testing.T) {
	var auth *AuthService

	_, err := auth.GenerateToken("ui")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = auth.ValidateToken("a.b.c")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestLoadOrCreateSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "secret")

	created, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(created), minSecretBytes)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}
