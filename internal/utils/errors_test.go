package utils

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	plain := NewAppError(ErrDatabase, "query failed", nil)
	assert.Equal(t, "query failed", plain.Error())

	wrapped := NewAppError(ErrDatabase, "query failed", errors.New("connection reset"))
	assert.Equal(t, "query failed: connection reset", wrapped.Error())
}

func TestAppErrorToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, AppErrorToHTTPStatus(ErrPostNotFound))
	assert.Equal(t, http.StatusNotFound, AppErrorToHTTPStatus(ErrReplyNotFound))
	assert.Equal(t, http.StatusBadRequest, AppErrorToHTTPStatus(ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, AppErrorToHTTPStatus(ErrCycleDetected))
	assert.Equal(t, http.StatusUnauthorized, AppErrorToHTTPStatus(ErrInvalidCredentials))
	assert.Equal(t, http.StatusForbidden, AppErrorToHTTPStatus(ErrNotMember))
	assert.Equal(t, http.StatusConflict, AppErrorToHTTPStatus(ErrAlreadyMember))
	assert.Equal(t, http.StatusConflict, AppErrorToHTTPStatus(ErrCommunityExists))
	assert.Equal(t, http.StatusInternalServerError, AppErrorToHTTPStatus(ErrActorTimeout))
	assert.Equal(t, http.StatusInternalServerError, AppErrorToHTTPStatus("SOMETHING_NEW"))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFound(NewUserNotFoundError("abc")))
	assert.False(t, IsNotFound(NewValidationError("bad input")))
	assert.False(t, IsNotFound(errors.New("plain error")))

	assert.True(t, IsConflict(NewAppError(ErrAlreadyMember, "already a member", nil)))
	assert.False(t, IsConflict(NewUserNotFoundError("abc")))

	assert.True(t, IsErrorCode(NewValidationError("bad"), ErrInvalidInput))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrInvalidInput))
}
