package errors

import "errors"

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidTier        = errors.New("invalid permission tier")
	ErrInvalidPageIndex   = errors.New("invalid page index")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access has been denied")
	ErrRootNotConfigured  = errors.New("root account credentials are not configured")
	ErrRootExists         = errors.New("root account already exists")
)
