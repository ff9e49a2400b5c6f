package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-forge/internal/config"
)

func newJWTService(secret string) *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: secret, Issuer: "resume-forge", ExpirationHours: 1})
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := newJWTService("secret")

	token, err := service.GenerateToken("user_1", "jane@example.com")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.Subject)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "resume-forge", claims.Issuer)

	identity := claims.GetIdentity()
	assert.Equal(t, "user_1", identity.UserID)
	assert.Equal(t, "jane@example.com", identity.Email)
}

func TestJWTService_GenerateRequiresUserID(t *testing.T) {
	_, err := newJWTService("secret").GenerateToken("", "jane@example.com")
	assert.Error(t, err)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, err := newJWTService("one").GenerateToken("user_1", "")
	require.NoError(t, err)

	_, err = newJWTService("two").ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	service := newJWTService("secret")
	issued := time.Now().Add(-3 * time.Hour)
	service.now = func() time.Time { return issued }

	token, err := service.GenerateToken("user_1", "")
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	other := NewJWTService(&config.JWTConfig{Secret: "secret", Issuer: "someone-else", ExpirationHours: 1})
	token, err := other.GenerateToken("user_1", "")
	require.NoError(t, err)

	_, err = newJWTService("secret").ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user_1",
		Issuer:    "resume-forge",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newJWTService("secret").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsMissingSubjectOrExpiry(t *testing.T) {
	service := newJWTService("secret")

	noSubject := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "resume-forge",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noSubject).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = service.ValidateToken(token)
	assert.Error(t, err)

	noExpiry := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user_1", Issuer: "resume-forge"}}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, noExpiry).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsMalformedToken(t *testing.T) {
	service := newJWTService("secret")

	_, err := service.ValidateToken("")
	assert.Error(t, err)

	_, err = service.ValidateToken("a.b")
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
}
