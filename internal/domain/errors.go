package domain

import "errors"

// Domain errors
var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrDuplicatePlayer     = errors.New("username or email already exists")
	ErrInvalidScore        = errors.New("invalid score value")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrUpstreamFailure     = errors.New("upstream request failed")
	ErrInternalError       = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) || errors.Is(err, ErrAchievementNotFound)
}

// IsValidationError checks if an error should surface as a bad request
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidScore) || errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrDuplicatePlayer)
}
