package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/argon2"

	"honeypot-service/internal/config"
)

// ErrInvalidPassword is returned for a failed admin login.
var ErrInvalidPassword = errors.New("invalid admin password")

// Argon2id parameters for the in-memory admin password digest.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 32
	tokenLen     = 32
)

// TokenStore persists issued admin tokens with a TTL.
type TokenStore interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
}

// AdminAuthenticator gates the dashboard's destructive operations. The
// configured password is digested with argon2id at startup so the plaintext
// is not retained; logins verify in constant time and issue a random token
// held in the token store for the configured TTL.
type AdminAuthenticator struct {
	salt     []byte
	digest   []byte
	tokens   TokenStore
	tokenTTL time.Duration
}

// NewAdminAuthenticator builds the authenticator from config.
func NewAdminAuthenticator(cfg config.AdminConfig, tokens TokenStore) (*AdminAuthenticator, error) {
	if cfg.Password == "" {
		return nil, errors.New("admin password is not configured")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return &AdminAuthenticator{
		salt:     salt,
		digest:   argon2.IDKey([]byte(cfg.Password), salt, argonTime, argonMemory, argonThreads, argonKeyLen),
		tokens:   tokens,
		tokenTTL: cfg.TokenTTL,
	}, nil
}

// Login verifies the password and issues a fresh token on success.
func (a *AdminAuthenticator) Login(ctx context.Context, password string) (string, error) {
	candidate := argon2.IDKey([]byte(password), a.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	if subtle.ConstantTimeCompare(candidate, a.digest) != 1 {
		return "", ErrInvalidPassword
	}

	raw := make([]byte, tokenLen)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := a.tokens.Save(ctx, token, a.tokenTTL); err != nil {
		return "", fmt.Errorf("failed to store admin token: %w", err)
	}
	return token, nil
}

// Verify reports whether the token is a live admin token.
func (a *AdminAuthenticator) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return a.tokens.Exists(ctx, token)
}
