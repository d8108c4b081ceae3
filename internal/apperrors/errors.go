package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrNicknameTaken     = errors.New("nickname already taken")
	ErrPasswordMismatch  = errors.New("password confirmation does not match")

	// Same error for unknown username and wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")

	// Nothing stored for the user: logged out or never logged in
	ErrSessionNotFound = errors.New("session not found")
	// Presented refresh token does not match the stored fingerprint
	ErrTokenReused = errors.New("refresh token reused")
)
