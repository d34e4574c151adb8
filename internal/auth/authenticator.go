package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todolist/api/internal/model"
	"todolist/api/internal/store"
)

// UserFinder is the part of the credential store the authenticator reads.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Authenticator runs the login flow and resolves bearer tokens to users.
type Authenticator struct {
	users     UserFinder
	passwords *PasswordHasher
	tokens    *TokenService

	// dummyHash is compared against on unknown emails so both rejection paths
	// spend a bcrypt comparison.
	dummyHash string
}

func NewAuthenticator(users UserFinder, passwords *PasswordHasher, tokens *TokenService) (*Authenticator, error) {
	dummy, err := passwords.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Authenticator{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		dummyHash: dummy,
	}, nil
}

func (a *Authenticator) Tokens() *TokenService { return a.tokens }

// Login verifies email and password and issues a token whose subject is the email.
// Unknown email and wrong password both return ErrIncorrectCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return "", nil, err
		}
		a.passwords.Verify(password, a.dummyHash)
		return "", nil, ErrIncorrectCredentials
	}

	if !a.passwords.Verify(password, user.PasswordHash) {
		return "", nil, ErrIncorrectCredentials
	}

	token, err := a.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Resolve maps a raw bearer token to its user. Empty tokens give ErrUnauthenticated.
// Every other failure is ErrCouldNotAuthenticate, wrapping the cause for logs.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	subject, err := a.tokens.Validate(token)
	if err != nil {
		return nil, &resolveError{cause: err}
	}

	user, err := a.users.GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &resolveError{cause: fmt.Errorf("subject has no user: %w", err)}
		}
		return nil, err
	}
	return user, nil
}

// resolveError is ErrCouldNotAuthenticate under errors.Is. Cause keeps the
// underlying reason for server-side logging only.
type resolveError struct {
	cause error
}

func (e *resolveError) Error() string        { return ErrCouldNotAuthenticate.Error() }
func (e *resolveError) Is(target error) bool { return target == ErrCouldNotAuthenticate }
func (e *resolveError) Unwrap() error        { return e.cause }

// CheckOwner allows a mutation of the user record targetID only by that user.
func CheckOwner(current *model.User, targetID int64) error {
	if current == nil || current.ID != targetID {
		return ErrForbidden
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value.
// It returns "" when the header is absent or uses another scheme.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
