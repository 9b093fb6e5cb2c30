package user_services

import "errors"

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidUsername    = errors.New("username must be between 3 and 30 characters")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmailRequired      = errors.New("email not provided by google")
	ErrUsernameExhausted  = errors.New("could not generate a unique username")
)
