// Package auth composes the user directory and the token service into the
// account operations exposed over HTTP.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/todo-service/internal/apperr"
	"github.com/nhle/todo-service/internal/directory"
	"github.com/nhle/todo-service/internal/model"
	"github.com/nhle/todo-service/internal/store"
	"github.com/nhle/todo-service/internal/token"
)

// TokenType is reported alongside every issued token.
const TokenType = "bearer"

// RegisterInput is the body of a registration request.
type RegisterInput = directory.NewUser

// Service runs registration, login and session-scoped account changes.
type Service struct {
	users  *directory.Directory
	tokens *token.Service
	ttl    time.Duration
}

// NewService returns a Service issuing tokens that live for ttl.
func NewService(users *directory.Directory, tokens *token.Service, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = token.DefaultTTL
	}
	return &Service{users: users, tokens: tokens, ttl: ttl}
}

// Register creates an account and returns its public profile.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.users.Create(ctx, in)
}

// Login checks credentials and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (model.Token, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return model.Token{}, err
	}
	return s.issue(u)
}

// Resolve maps a bearer token to the active user it names.
func (s *Service) Resolve(ctx context.Context, bearer string) (*model.User, error) {
	sub, err := s.tokens.Verify(bearer)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByUsername(ctx, sub.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrUnknownSubject
		}
		return nil, err
	}
	// The token must name the account currently holding the username.
	if sub.UserID != "" && sub.UserID != u.ID {
		return nil, apperr.ErrUnknownSubject
	}
	if !u.IsActive {
		return nil, apperr.ErrInactiveAccount
	}
	return u, nil
}

// Refresh issues a fresh token for an already resolved user.
func (s *Service) Refresh(_ context.Context, u *model.User) (model.Token, error) {
	return s.issue(u)
}

// ChangePassword replaces u's password once current verifies.
func (s *Service) ChangePassword(ctx context.Context, u *model.User, current, next string) error {
	return s.users.ChangePassword(ctx, u, current, next)
}

// UpdateProfile applies upd to u.
func (s *Service) UpdateProfile(ctx context.Context, u *model.User, upd directory.ProfileUpdate) (*model.User, error) {
	return s.users.UpdateProfile(ctx, u, upd)
}

func (s *Service) issue(u *model.User) (model.Token, error) {
	raw, err := s.tokens.Issue(token.Subject{Username: u.Username, UserID: u.ID}, s.ttl)
	if err != nil {
		return model.Token{}, err
	}
	return model.Token{
		AccessToken: raw,
		TokenType:   TokenType,
		ExpiresIn:   int(s.ttl / time.Second),
	}, nil
}
