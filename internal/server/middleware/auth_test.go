package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]Identity
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]Identity)}
}

func (v *testTokenValidator) addValidToken(token string, identity Identity) {
	v.validTokens[token] = identity
}

func (v *testTokenValidator) ValidateToken(tokenString string) (IdentityGetter, error) {
	identity, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(identity), nil
}

type testClaims Identity

func (c testClaims) GetIdentity() Identity { return Identity(c) }

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	validator.addValidToken("valid-token", Identity{UserID: "user_123", Email: "jane@example.com"})

	var got Identity
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := GetIdentity(r)
		require.NoError(t, err)
		got = identity
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	req.Header.Set("Authorization", "bearer valid-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user_123", got.UserID)
	assert.Equal(t, "jane@example.com", got.Email)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := newTestTokenValidator()
	validator.addValidToken("valid-token", Identity{UserID: "user_123"})
	validator.addValidToken("anonymous", Identity{})

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic valid-token"},
		{name: "scheme only", header: "Bearer"},
		{name: "extra parts", header: "Bearer valid-token extra"},
		{name: "unknown token", header: "Bearer forged"},
		{name: "token without subject", header: "Bearer anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
		})
	}
}

func TestGetUserID_MissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := GetUserID(req)
	assert.Error(t, err)

	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: "user_1"}))
	id, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, "user_1", id)
}
