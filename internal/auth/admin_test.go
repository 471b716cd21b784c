package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-service/internal/config"
)

func newTestAuthenticator(t *testing.T) *AdminAuthenticator {
	t.Helper()
	a, err := NewAdminAuthenticator(config.AdminConfig{
		Password: "correct-horse",
		TokenTTL: time.Minute,
	}, NewMemoryTokenStore())
	require.NoError(t, err)
	return a
}

func TestLoginIssuesToken(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	token, err := a.Login(ctx, "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	ok, err := a.Verify(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	a := newTestAuthenticator(t)

	_, err := a.Login(context.Background(), "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestVerifyRejectsUnknownToken(t *testing.T) {
	a := newTestAuthenticator(t)

	ok, err := a.Verify(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyPasswordIsRejectedAtConstruction(t *testing.T) {
	_, err := NewAdminAuthenticator(config.AdminConfig{TokenTTL: time.Minute}, NewMemoryTokenStore())
	assert.Error(t, err)
}

func TestMemoryTokenStoreExpiry(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "t1", -time.Second))
	ok, err := store.Exists(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok, "expired token must not verify")

	require.NoError(t, store.Save(ctx, "t2", time.Minute))
	ok, err = store.Exists(ctx, "t2")
	require.NoError(t, err)
	assert.True(t, ok)
}
