package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aboutsettings/internal/log"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer    = "aboutsettings"
	minSecretBytes = 32
	// DefaultTokenExpiry is used when no expiry is configured
	DefaultTokenExpiry = 90 * 24 * time.Hour
)

// ErrNotInitialized is returned by a nil AuthService
var ErrNotInitialized = errors.New("auth service not initialized")

// AuthService signs and validates bearer tokens guarding identifier queries
type AuthService struct {
	secretKey   []byte
	tokenExpiry time.Duration
	now         func() time.Time
}

// Claims represents the JWT claims structure
type Claims struct {
	Client string `json:"client"`
	jwt.RegisteredClaims
}

// NewAuthService creates an AuthService. secretKey must be at least 32 bytes.
func NewAuthService(secretKey string, tokenExpiry time.Duration) (*AuthService, error) {
	secretKey = strings.TrimSpace(secretKey)
	if len(secretKey) < minSecretBytes {
		return nil, fmt.Errorf("secret key is %d bytes, need at least %d", len(secretKey), minSecretBytes)
	}
	if tokenExpiry <= 0 {
		tokenExpiry = DefaultTokenExpiry
	}
	return &AuthService{
		secretKey:   []byte(secretKey),
		tokenExpiry: tokenExpiry,
		now:         time.Now,
	}, nil
}

// LoadOrCreateSecret returns the secret stored at path, generating and
// persisting a new random one (mode 0600) when the file is missing or empty
func LoadOrCreateSecret(path string) (string, error) {
	if data, err := os.ReadFile(path); err == nil && len(strings.TrimSpace(string(data))) > 0 {
		secret := strings.TrimSpace(string(data))
		log.Info().Str("file", path).Int("length", len(secret)).Msg("Loaded persisted secret key")
		return secret, nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read secret key %s: %w", path, err)
	}

	randomBytes := make([]byte, minSecretBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	secret := hex.EncodeToString(randomBytes)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create secret key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
		return "", fmt.Errorf("failed to persist secret key to %s: %w", path, err)
	}
	log.Info().Str("file", path).Int("length", len(secret)).Msg("Generated and persisted secret key")

	return secret, nil
}

// GenerateToken creates a signed token for client
func (a *AuthService) GenerateToken(client string) (string, error) {
	if a == nil {
		return "", ErrNotInitialized
	}

	now := a.now()
	claims := Claims{
		Client: client,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secretKey)
}

// ValidateToken verifies and parses a token
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	if a == nil {
		return nil, ErrNotInitialized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
