package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnptv/internal/rbac"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthenticator(t *testing.T, ttl time.Duration) *JWTAuthenticator {
	t.Helper()
	a, err := NewJWTAuthenticator(testSecret, "pnptv", "pnptv", ttl)
	require.NoError(t, err)
	return a
}

func TestNewJWTAuthenticatorRejectsShortSecret(t *testing.T) {
	_, err := NewJWTAuthenticator("too-short", "pnptv", "pnptv", time.Hour)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	a := newTestAuthenticator(t, time.Hour)

	token, expiresAt, err := a.GenerateToken("4242", rbac.RolePrime, true)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "4242", claims.Subject)
	assert.Equal(t, rbac.RolePrime, claims.Role)
	assert.True(t, claims.TermsAccepted)
}

func TestExpiredTokenRejected(t *testing.T) {
	a := newTestAuthenticator(t, time.Second)

	token, _, err := a.GenerateToken("4242", rbac.RoleFree, false)
	require.NoError(t, err)

	time.Sleep(2 * time.Second)

	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedSignatureRejected(t *testing.T) {
	a := newTestAuthenticator(t, time.Hour)

	token, _, err := a.GenerateToken("4242", rbac.RoleAdmin, true)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip one byte of the signature segment.
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = a.ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretRejected(t *testing.T) {
	a := newTestAuthenticator(t, time.Hour)
	token, _, err := a.GenerateToken("4242", rbac.RoleFree, false)
	require.NoError(t, err)

	other, err := NewJWTAuthenticator("ffffffffffffffffffffffffffffffff", "pnptv", "pnptv", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMalformedTokenRejected(t *testing.T) {
	a := newTestAuthenticator(t, time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := a.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}
