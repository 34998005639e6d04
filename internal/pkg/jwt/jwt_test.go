package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return New("access-secret-123", "refresh-secret-456", 15*time.Minute, 7*24*time.Hour)
}

func TestService_TTLs(t *testing.T) {
	svc := newTestService()
	assert.Equal(t, 15*time.Minute, svc.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, svc.RefreshTTL())
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(42, "STAFF")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "STAFF", claims.Role)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateRefreshToken(7)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

// Two refresh tokens for the same user issued back to back must still
// be distinct strings.
func TestRefreshToken_UniquePerIssuance(t *testing.T) {
	svc := newTestService()

	first, err := svc.GenerateRefreshToken(7)
	require.NoError(t, err)
	second, err := svc.GenerateRefreshToken(7)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	c1, err := svc.ValidateRefreshToken(first)
	require.NoError(t, err)
	c2, err := svc.ValidateRefreshToken(second)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

// An access token must never be accepted where a refresh token is
// expected, and vice versa. Distinct secrets enforce that.
func TestTokens_SecretsNotInterchangeable(t *testing.T) {
	svc := newTestService()

	access, err := svc.GenerateAccessToken(1, "STUDENT")
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(1)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_WrongSecretRejected(t *testing.T) {
	svc := newTestService()
	other := New("completely-different", "refresh-secret-456", 15*time.Minute, 7*24*time.Hour)

	token, err := svc.GenerateAccessToken(1, "ADMIN")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_ExpiredRejected(t *testing.T) {
	svc := New("access-secret-123", "refresh-secret-456", -1*time.Minute, 7*24*time.Hour)

	token, err := svc.GenerateAccessToken(1, "STUDENT")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
