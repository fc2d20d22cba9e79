package internaltypes

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrLoginFailed        = errors.New("login failed: welcome message not shown")
	ErrMissingCredentials = errors.New("login id and password are required")
)
