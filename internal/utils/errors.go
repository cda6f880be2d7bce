package utils

import "net/http"

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrDuplicate    = "DUPLICATE"
	ErrInvalidInput = "INVALID_INPUT"

	// Authentication/Authorization errors
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrForbidden          = "FORBIDDEN"
	ErrInvalidToken       = "INVALID_TOKEN"
	ErrInvalidCredentials = "INVALID_CREDENTIALS"

	// Entity-specific not-found variants
	ErrUserNotFound      = "USER_NOT_FOUND"
	ErrCommunityNotFound = "COMMUNITY_NOT_FOUND"
	ErrCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrPostNotFound      = "POST_NOT_FOUND"
	ErrCommentNotFound   = "COMMENT_NOT_FOUND"
	ErrReplyNotFound     = "REPLY_NOT_FOUND"

	// Conflict variants
	ErrUserAlreadyExists = "USER_ALREADY_EXISTS"
	ErrCommunityExists   = "COMMUNITY_EXISTS"
	ErrCategoryExists    = "CATEGORY_EXISTS"
	ErrAlreadyMember     = "ALREADY_MEMBER"
	ErrNotMember         = "NOT_MEMBER"

	// Category tree assembly
	ErrCycleDetected = "CYCLE_DETECTED"

	// Actor communication errors
	ErrActorTimeout = "ACTOR_TIMEOUT"

	ErrDatabase = "DATABASE_ERROR"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// Specific error creators for common cases
func NewUserNotFoundError(userID string) *AppError {
	return &AppError{
		Code:    ErrUserNotFound,
		Message: "User not found: " + userID,
	}
}

func NewCommunityNotFoundError(communityID string) *AppError {
	return &AppError{
		Code:    ErrCommunityNotFound,
		Message: "Community not found: " + communityID,
	}
}

func NewValidationError(reason string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: reason,
	}
}

func NewActorTimeoutError(actorName string) *AppError {
	return &AppError{
		Code:    ErrActorTimeout,
		Message: "Actor communication timeout: " + actorName,
	}
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether the error carries any of the not-found codes.
func IsNotFound(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	switch appErr.Code {
	case ErrNotFound, ErrUserNotFound, ErrCommunityNotFound,
		ErrCategoryNotFound, ErrPostNotFound, ErrCommentNotFound, ErrReplyNotFound:
		return true
	}
	return false
}

// IsConflict reports whether the error carries any of the conflict codes.
func IsConflict(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	switch appErr.Code {
	case ErrDuplicate, ErrUserAlreadyExists, ErrCommunityExists,
		ErrCategoryExists, ErrAlreadyMember:
		return true
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound, ErrUserNotFound, ErrCommunityNotFound, ErrCategoryNotFound,
		ErrPostNotFound, ErrCommentNotFound, ErrReplyNotFound:
		return http.StatusNotFound
	case ErrInvalidInput, ErrCycleDetected:
		return http.StatusBadRequest
	case ErrUnauthorized, ErrInvalidToken, ErrInvalidCredentials:
		return http.StatusUnauthorized
	case ErrForbidden, ErrNotMember:
		return http.StatusForbidden
	case ErrDuplicate, ErrUserAlreadyExists, ErrCommunityExists, ErrCategoryExists, ErrAlreadyMember:
		return http.StatusConflict
	case ErrDatabase, ErrActorTimeout:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
