// Package auth verifies bearer tokens on API requests.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

// ErrInvalidToken is returned for missing, malformed, or unknown tokens.
var ErrInvalidToken = errors.New("invalid or missing bearer token")

// Identity describes an authenticated caller.
type Identity struct {
	Subject string
}

// Verifier checks a bearer token and returns the caller's identity.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// StaticVerifier accepts a single pre-shared token, compared in
// constant time.
type StaticVerifier struct {
	Token   string
	Subject string
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(token string) (*Identity, error) {
	if v.Token == "" || token == "" {
		return nil, ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(v.Token), []byte(token)) != 1 {
		return nil, ErrInvalidToken
	}
	subject := v.Subject
	if subject == "" {
		subject = "api"
	}
	return &Identity{Subject: subject}, nil
}

// FromAuthorizationHeader extracts the token from an RFC 6750
// "Bearer <token>" header value.
func FromAuthorizationHeader(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}
