package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(JWTConfig{SecretKey: "s3cret", AccessTokenExp: 8 * time.Hour, TokenIssuer: "docissuer"})
	id := uuid.New()

	token, expiresIn, err := svc.GenerateAccessToken(id, "admin")
	require.NoError(t, err)
	assert.Equal(t, 8*60*60, expiresIn)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "docissuer", claims.Issuer)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService(JWTConfig{SecretKey: "s3cret", AccessTokenExp: time.Hour})
	token, _, err := svc.GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, _, err := NewJWTService(JWTConfig{SecretKey: "a", AccessTokenExp: time.Hour}).GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	_, err = NewJWTService(JWTConfig{SecretKey: "b", AccessTokenExp: time.Hour}).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = ExtractBearerToken("bearer  xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = ExtractBearerToken("  ")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestMatchStaticToken(t *testing.T) {
	assert.True(t, MatchStaticToken("tok", "tok"))
	assert.False(t, MatchStaticToken("tok", "toke"))
	assert.False(t, MatchStaticToken("", ""))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	assert.Equal(t, bcrypt.MinCost, h.Cost())

	hash, err := h.Hash("correct-horse")
	require.NoError(t, err)
	assert.NoError(t, h.Verify(hash, "correct-horse"))
	assert.ErrorIs(t, h.Verify(hash, "wrong-horse"), ErrPasswordMismatch)

	err = h.Verify("not-a-bcrypt-hash", "correct-horse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)

	_, err = h.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewPasswordHasher_OutOfRangeCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).Cost())
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(bcrypt.MaxCost+1).Cost())
}
