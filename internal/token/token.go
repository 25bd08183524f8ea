// Package token issues and verifies HS256 bearer tokens that carry a
// subject's username and user id.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/todo-service/internal/apperr"
)

// DefaultTTL is the lifetime of access tokens unless configured otherwise.
const DefaultTTL = 30 * time.Minute

// Subject is the identity embedded in a token.
type Subject struct {
	Username string
	UserID   string
}

type claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a single process-wide key.
type Service struct {
	key []byte
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService returns a Service signing with key.
func NewService(key []byte, opts ...Option) (*Service, error) {
	if len(key) == 0 {
		return nil, errors.New("token signing key is required")
	}
	s := &Service{key: key, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a signed token for sub that expires ttl from now.
func (s *Service) Issue(sub Subject, ttl time.Duration) (string, error) {
	now := s.now()
	c := claims{
		UserID: sub.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded
// subject. Every failure is apperr.ErrInvalidToken.
func (s *Service) Verify(raw string) (Subject, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return Subject{}, apperr.Wrap(apperr.CodeInvalidToken, apperr.ErrInvalidToken.Message, err)
	}

	// Expiry is exclusive: a token is dead at its exp instant.
	if !s.now().Before(c.ExpiresAt.Time) {
		return Subject{}, apperr.ErrInvalidToken
	}
	if c.Subject == "" {
		return Subject{}, apperr.ErrInvalidToken
	}

	return Subject{Username: c.Subject, UserID: c.UserID}, nil
}
