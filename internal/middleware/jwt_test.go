package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret")
	userID := uuid.New()

	token, err := manager.GenerateToken(userID, "albert@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "albert@example.com", claims.Email)
	assert.Equal(t, "tribofy-api", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := NewTokenManager("test-secret")
	token, err := manager.GenerateToken(uuid.New(), "albert@example.com")
	require.NoError(t, err)

	other := NewTokenManager("different-secret")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret")
	_, err := manager.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	manager := NewTokenManager("test-secret")
	userID := uuid.New()
	token, err := manager.GenerateToken(userID, "albert@example.com")
	require.NoError(t, err)

	var gotUserID uuid.UUID
	handler := manager.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		gotUserID = id
		w.WriteHeader(http.StatusOK)
	})

	// Valid bearer token reaches the handler with the caller in context.
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotUserID)

	// Missing header is rejected.
	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Non-bearer scheme is rejected.
	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Basic abcdef")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Tampered token is rejected.
	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
