package auth

import (
	"errors"
	"net/http"
)

// Authorizer decorates an outgoing daemon request with credentials.
// Implementations must be safe for concurrent use.
type Authorizer interface {
	Authorize(r *http.Request) error
}

// TokenSource produces bearer tokens on demand.
type TokenSource interface {
	Token() (string, error)
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(r *http.Request) error

// Authorize calls f(r).
func (f AuthorizerFunc) Authorize(r *http.Request) error {
	return f(r)
}

// None leaves requests untouched.
type None struct{}

// Authorize implements Authorizer.
func (None) Authorize(*http.Request) error { return nil }

// Bearer sets an Authorization: Bearer header from a TokenSource.
type Bearer struct {
	Source TokenSource
}

// NewStaticBearer returns a Bearer authorizer that always sends token.
func NewStaticBearer(token string) (*Bearer, error) {
	if token == "" {
		return nil, errors.New("bearer token must not be empty")
	}
	return &Bearer{Source: staticToken(token)}, nil
}

// Authorize implements Authorizer.
func (b *Bearer) Authorize(r *http.Request) error {
	tok, err := b.Source.Token()
	if err != nil {
		return err
	}
	r.Header.Set("Authorization", "Bearer "+tok)
	return nil
}

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }
