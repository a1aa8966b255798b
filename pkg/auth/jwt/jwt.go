// Package jwt mints short-lived HS256 bearer tokens for daemons fronted by
// an authorizing proxy.
//
// Tokens are cached and re-signed once less than a fifth of their lifetime
// remains, so a long-running event stream and the requests around it share
// one token most of the time.
package jwt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Config holds the signer configuration.
type Config struct {
	// Secret is the HMAC key shared with the proxy (required).
	Secret []byte

	// Subject is the sub claim. Default: "dockhand".
	Subject string

	// Issuer is the iss claim. Omitted when empty.
	Issuer string

	// Audience is the aud claim. Omitted when empty.
	Audience string

	// TTL is the token lifetime. Default: 5 minutes.
	TTL time.Duration

	// Now overrides the clock (useful for testing).
	Now func() time.Time
}

func (c *Config) applyDefaults() {
	if c.Subject == "" {
		c.Subject = "dockhand"
	}
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Signer is an auth.TokenSource producing signed JWTs.
type Signer struct {
	config Config

	mu      sync.Mutex
	token   string
	expires time.Time
}

// New creates a Signer. The secret must not be empty.
func New(cfg Config) (*Signer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", cfg.TTL)
	}
	cfg.applyDefaults()
	return &Signer{config: cfg}, nil
}

// Token returns a valid signed token, re-signing when the cached one is
// close to expiry.
func (s *Signer) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.config.Now()
	if s.token != "" && now.Before(s.expires.Add(-s.config.TTL/5)) {
		return s.token, nil
	}

	expires := now.Add(s.config.TTL)
	claims := jwtlib.RegisteredClaims{
		Subject:   s.config.Subject,
		Issuer:    s.config.Issuer,
		IssuedAt:  jwtlib.NewNumericDate(now),
		NotBefore: jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(expires),
	}
	if s.config.Audience != "" {
		claims.Audience = jwtlib.ClaimStrings{s.config.Audience}
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.config.Secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}

	s.token = signed
	s.expires = expires
	return signed, nil
}
