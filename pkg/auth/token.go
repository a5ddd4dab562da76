// Package auth issues and verifies the service's bearer tokens.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

type Verifier interface {
	Verify(ctx context.Context, tokenString string) (jwt.Token, error)
}

// TokenManager signs and verifies HS256 access tokens for first-party
// clients. The subject claim carries the user id.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Issue creates a signed access token for the given user id.
func (m *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(userID).
		Issuer(m.issuer).
		IssuedAt(now).
		Expiration(now.Add(m.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify parses the token, checks the signature, expiration and issuer.
func (m *TokenManager) Verify(_ context.Context, tokenString string) (jwt.Token, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.secret),
		// Standard validation checks - expiration, not before, etc.
		jwt.WithValidate(true),
		jwt.WithIssuer(m.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	return token, nil
}

// TTL reports the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}
