// Package session issues and resolves bearer tokens.
package session

import (
	"context"
	"errors"

	"github.com/eduard-w/songsMS/internal/apperr"
)

var ErrTokenNotFound = errors.New("token not found")

// CredentialChecker decides whether candidate proves stored.
type CredentialChecker interface {
	Check(stored Identity, candidate string) bool
}

// PlainCredentials compares secrets verbatim.
type PlainCredentials struct{}

func (PlainCredentials) Check(stored Identity, candidate string) bool {
	return stored.Secret == candidate
}

type Authority struct {
	users    UserStore
	tokens   TokenStore
	creds    CredentialChecker
	newToken func() string
}

type Option func(*Authority)

func WithCredentialChecker(c CredentialChecker) Option {
	return func(a *Authority) { a.creds = c }
}

func WithTokenSource(next func() string) Option {
	return func(a *Authority) { a.newToken = next }
}

func NewAuthority(users UserStore, tokens TokenStore, opts ...Option) *Authority {
	a := &Authority{
		users:    users,
		tokens:   tokens,
		creds:    PlainCredentials{},
		newToken: NewGenerator().Token,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login checks the credentials and mints a token that is unique among the
// live ones.
func (a *Authority) Login(ctx context.Context, req LoginRequest) (string, error) {
	user, err := a.users.FindUser(ctx, req.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return "", apperr.Unauthenticated(msgDeclined)
	}
	if err != nil {
		return "", apperr.Internal("user lookup failed", err)
	}

	id := user.Identity()
	if !a.creds.Check(id, req.Password) {
		return "", apperr.Unauthenticated(msgDeclined)
	}

	for {
		token := a.newToken()
		if a.tokens.Insert(token, id) {
			return token, nil
		}
	}
}

func (a *Authority) Resolve(_ context.Context, token string) (Identity, error) {
	id, ok := a.tokens.Lookup(token)
	if !ok {
		return Identity{}, ErrTokenNotFound
	}
	return id, nil
}

func (a *Authority) IdentityExists(ctx context.Context, userID string) (bool, error) {
	_, err := a.users.FindUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
