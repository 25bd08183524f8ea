// Package directory manages user accounts: uniqueness-checked registration,
// credential checks and profile changes.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todo-service/internal/apperr"
	"github.com/nhle/todo-service/internal/model"
	"github.com/nhle/todo-service/internal/store"
	"github.com/nhle/todo-service/internal/validate"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// NewUser is the input for account registration. It doubles as the
// registration request body.
type NewUser struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8,maxbytes=72"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
}

// ProfileUpdate carries optional profile changes; nil fields are left alone.
// An empty email is treated as absent, so its rule is checked after that.
type ProfileUpdate struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
}

const passwordRule = "required,min=8,maxbytes=72"

// Directory is the user account service.
type Directory struct {
	users  store.UserStore
	hasher PasswordHasher
	now    func() time.Time
}

// New returns a Directory backed by users.
func New(users store.UserStore, hasher PasswordHasher, now func() time.Time) *Directory {
	if now == nil {
		now = time.Now
	}
	return &Directory{users: users, hasher: hasher, now: now}
}

// FindByUsername returns the user with the given username.
func (d *Directory) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return d.users.GetUserByUsername(ctx, username)
}

// FindByEmail returns the user with the given email.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return d.users.GetUserByEmail(ctx, email)
}

// FindByID returns the user with the given id.
func (d *Directory) FindByID(ctx context.Context, id string) (*model.User, error) {
	return d.users.GetUserByID(ctx, id)
}

// Create registers a new active user. The username is checked before the
// email, so a request colliding on both reports the username.
func (d *Directory) Create(ctx context.Context, in NewUser) (*model.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if taken, err := d.exists(ctx, d.users.GetUserByUsername, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.ErrDuplicateUsername
	}
	if taken, err := d.exists(ctx, d.users.GetUserByEmail, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.ErrDuplicateEmail
	}

	hash, err := d.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := model.User{
		ID:             uuid.New().String(),
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		IsActive:       true,
		HashedPassword: hash,
		CreatedAt:      d.now().UTC(),
	}
	if err := d.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords both yield apperr.ErrInvalidCredential.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := d.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrInvalidCredential
		}
		return nil, err
	}
	if !d.hasher.Verify(password, u.HashedPassword) {
		return nil, apperr.ErrInvalidCredential
	}
	return u, nil
}

// ChangePassword replaces u's password after verifying current against the
// stored hash. u is refreshed from the committed row.
func (d *Directory) ChangePassword(ctx context.Context, u *model.User, current, next string) error {
	if err := validate.Field("new_password", next, passwordRule); err != nil {
		return err
	}
	hash, err := d.hasher.Hash(next)
	if err != nil {
		return err
	}

	updated, err := d.users.MutateUser(ctx, u.ID, func(fresh *model.User) (bool, error) {
		if !d.hasher.Verify(current, fresh.HashedPassword) {
			return false, apperr.New(apperr.CodeInvalidCredential, "Incorrect current password")
		}
		fresh.HashedPassword = hash
		fresh.UpdatedAt = d.stamp()
		return true, nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredential) {
			return err
		}
		return fmt.Errorf("changing password: %w", err)
	}
	*u = *updated
	return nil
}

// UpdateProfile applies the non-nil fields of upd to the committed row; other
// columns keep their stored values. A changed email must not belong to
// another account.
func (d *Directory) UpdateProfile(ctx context.Context, u *model.User, upd ProfileUpdate) (*model.User, error) {
	if upd.Email != nil && *upd.Email == "" {
		upd.Email = nil
	}
	if err := validate.Struct(upd); err != nil {
		return nil, err
	}
	if upd.Email != nil {
		if err := validate.Field("email", *upd.Email, "email"); err != nil {
			return nil, err
		}
	}

	if upd.Email != nil && *upd.Email != u.Email {
		if taken, err := d.exists(ctx, d.users.GetUserByEmail, *upd.Email); err != nil {
			return nil, err
		} else if taken {
			return nil, apperr.ErrDuplicateEmail
		}
	}

	// The callback runs inside the store transaction and must not call back
	// into the store; the UNIQUE index catches a racing email claim.
	updated, err := d.users.MutateUser(ctx, u.ID, func(fresh *model.User) (bool, error) {
		if upd.Email != nil {
			fresh.Email = *upd.Email
		}
		if upd.FullName != nil {
			name := *upd.FullName
			fresh.FullName = &name
		}
		fresh.UpdatedAt = d.stamp()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	*u = *updated
	return updated, nil
}

// SetActive enables or disables the account with the given username.
func (d *Directory) SetActive(ctx context.Context, username string, active bool) (*model.User, error) {
	u, err := d.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return d.users.MutateUser(ctx, u.ID, func(fresh *model.User) (bool, error) {
		if fresh.IsActive == active {
			return false, nil
		}
		fresh.IsActive = active
		fresh.UpdatedAt = d.stamp()
		return true, nil
	})
}

func (d *Directory) stamp() *time.Time {
	t := d.now().UTC()
	return &t
}

func (d *Directory) exists(
	ctx context.Context,
	lookup func(context.Context, string) (*model.User, error),
	key string,
) (bool, error) {
	_, err := lookup(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
