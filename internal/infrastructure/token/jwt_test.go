package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nutriscan/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTIssuer(t *testing.T) {
	_, err := NewJWTIssuer("", "nutriscan", time.Hour)
	assert.Error(t, err)

	issuer, err := NewJWTIssuer("secret", "nutriscan", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, issuer.ttl)
}

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewJWTIssuer("test-secret", "nutriscan", time.Hour)
	require.NoError(t, err)

	user := &domain.User{Username: "alice", Email: "alice@example.com"}

	t.Run("round trips the username", func(t *testing.T) {
		signed, expiresAt, err := issuer.Issue(user)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		username, err := issuer.Verify(signed)
		require.NoError(t, err)
		assert.Equal(t, "alice", username)
	})

	t.Run("rejects empty user", func(t *testing.T) {
		_, _, err := issuer.Issue(&domain.User{})
		assert.Error(t, err)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other, _ := NewJWTIssuer("other-secret", "nutriscan", time.Hour)
		signed, _, err := other.Issue(user)
		require.NoError(t, err)

		_, err = issuer.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("rejects token from another issuer", func(t *testing.T) {
		other, _ := NewJWTIssuer("test-secret", "someone-else", time.Hour)
		signed, _, _ := other.Issue(user)

		_, err := issuer.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		past, _ := NewJWTIssuer("test-secret", "nutriscan", time.Hour)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		signed, _, _ := past.Issue(user)

		_, err := issuer.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("rejects unsigned token", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "alice", "iss": "nutriscan"})
		signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := issuer.Verify("not.a.token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
