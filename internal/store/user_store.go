package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/todo-service/internal/apperr"
	"github.com/nhle/todo-service/internal/model"
)

const userColumns = `id, username, email, full_name, is_active, hashed_password, created_at, updated_at`

// CreateUser inserts a new user row.
func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.FullName, boolToInt(u.IsActive),
		u.HashedPassword, formatTime(u.CreatedAt), formatTimePtr(u.UpdatedAt),
	)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("creating user %s: %w", u.Username, err)
	}
	return nil
}

// GetUserByID retrieves a user by primary key.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByUsername retrieves a user by exact username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, "username", username)
}

// GetUserByEmail retrieves a user by exact email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, "email", email)
}

// getUser looks a user up by one of its unique columns. column is never
// caller-controlled.
func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*model.User, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value)

	u, err := scanUser(row)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user by %s: %w", column, err)
	}
	return &u, nil
}

// MutateUser re-reads the user with id, lets fn modify it and writes the
// mutable columns back in one transaction. fn reports whether anything
// changed; an error from fn aborts without writing.
func (s *SQLiteStore) MutateUser(
	ctx context.Context,
	id string,
	fn func(*model.User) (bool, error),
) (*model.User, error) {
	var u model.User
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		u, err = scanUser(tx.QueryRowxContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE id = ?", id))
		if err != nil {
			if notFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("getting user %s: %w", id, err)
		}

		changed, err := fn(&u)
		if err != nil || !changed {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users SET
				email = ?, full_name = ?, is_active = ?,
				hashed_password = ?, updated_at = ?
			WHERE id = ?`,
			u.Email, u.FullName, boolToInt(u.IsActive),
			u.HashedPassword, formatTimePtr(u.UpdatedAt),
			id,
		)
		if err != nil {
			if dup := uniqueViolation(err); dup != nil {
				return dup
			}
			return fmt.Errorf("updating user %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// uniqueViolation maps a SQLite unique constraint failure on users to the
// matching duplicate error, or returns nil.
func uniqueViolation(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return apperr.Wrap(apperr.CodeDuplicateUsername, apperr.ErrDuplicateUsername.Message, err)
	case strings.Contains(msg, "users.email"):
		return apperr.Wrap(apperr.CodeDuplicateEmail, apperr.ErrDuplicateEmail.Message, err)
	}
	return nil
}

// scanUser scans a user row selected with userColumns.
func scanUser(row scanner) (model.User, error) {
	var (
		u         model.User
		fullName  sql.NullString
		isActive  int
		createdAt string
		updatedAt sql.NullString
	)

	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &fullName, &isActive,
		&u.HashedPassword, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	u.FullName = nullStringPtr(fullName)
	u.IsActive = isActive != 0
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.User{}, err
	}
	if u.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return model.User{}, err
	}

	return u, nil
}
