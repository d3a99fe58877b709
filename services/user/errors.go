package user

import "errors"

var (
	// ErrInvalidCredentials is returned for a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrInvalidRefreshToken is returned when a refresh attempt fails;
	// the session is cleared and the client must log in again.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)
