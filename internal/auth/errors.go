package auth

import "errors"

var (
	// Token validation failures. Callers outside this package should only ever see
	// ErrCouldNotAuthenticate; these exist for logging and tests.
	ErrMalformedToken = errors.New("malformed_token")
	ErrExpiredToken   = errors.New("expired_token")
	ErrMissingSubject = errors.New("missing_subject")

	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrCouldNotAuthenticate = errors.New("could_not_authenticate")
	ErrForbidden            = errors.New("forbidden")
	ErrIncorrectCredentials = errors.New("incorrect_credentials")

	// ErrPasswordTooLong is returned by PasswordHasher.Hash for input bcrypt would refuse.
	ErrPasswordTooLong = errors.New("password_too_long")
)
