package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todo-service/internal/apperr"
	"github.com/nhle/todo-service/internal/model"
	"github.com/nhle/todo-service/internal/store"
	"github.com/nhle/todo-service/tests/testutil"
)

var baseTime = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func insertUser(t *testing.T, s store.UserStore, username string) model.User {
	t.Helper()

	u := model.User{
		ID:             uuid.New().String(),
		Username:       username,
		Email:          username + "@example.com",
		IsActive:       true,
		HashedPassword: "hash",
		CreatedAt:      baseTime,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func TestUserLookups(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := insertUser(t, s, "alice")

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("by username: %v", err)
	}
	if byName.ID != alice.ID || !byName.IsActive || byName.HashedPassword != "hash" {
		t.Fatalf("unexpected user %+v", byName)
	}
	if !byName.CreatedAt.Equal(baseTime) || byName.UpdatedAt != nil {
		t.Fatalf("unexpected timestamps %+v", byName)
	}

	if _, err := s.GetUserByEmail(ctx, "alice@example.com"); err != nil {
		t.Fatalf("by email: %v", err)
	}
	if _, err := s.GetUserByID(ctx, alice.ID); err != nil {
		t.Fatalf("by id: %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateUserUniqueViolations(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := insertUser(t, s, "alice")

	dupName := alice
	dupName.ID = uuid.New().String()
	dupName.Email = "other@example.com"
	if err := s.CreateUser(ctx, dupName); !errors.Is(err, apperr.ErrDuplicateUsername) {
		t.Fatalf("expected duplicate username, got %v", err)
	}

	dupEmail := alice
	dupEmail.ID = uuid.New().String()
	dupEmail.Username = "alice2"
	if err := s.CreateUser(ctx, dupEmail); !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestMutateUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := insertUser(t, s, "alice")
	insertUser(t, s, "bob")

	name := "Alice Liddell"
	updated := baseTime.Add(time.Hour)
	got, err := s.MutateUser(ctx, alice.ID, func(u *model.User) (bool, error) {
		u.FullName = &name
		u.IsActive = false
		u.UpdatedAt = &updated
		return true, nil
	})
	if err != nil {
		t.Fatalf("mutate user: %v", err)
	}
	if got.FullName == nil || *got.FullName != name || got.IsActive {
		t.Fatalf("mutation not returned: %+v", got)
	}

	stored, err := s.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.FullName == nil || *stored.FullName != name || stored.IsActive {
		t.Fatalf("mutation not persisted: %+v", stored)
	}
	if stored.UpdatedAt == nil || !stored.UpdatedAt.Equal(updated) {
		t.Fatalf("expected updated_at %v, got %v", updated, stored.UpdatedAt)
	}

	_, err = s.MutateUser(ctx, alice.ID, func(u *model.User) (bool, error) {
		u.Email = "bob@example.com"
		return true, nil
	})
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	_, err = s.MutateUser(ctx, uuid.New().String(), func(*model.User) (bool, error) {
		t.Fatal("callback must not run for a missing user")
		return false, nil
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMutateUserSeesCommittedState(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := insertUser(t, s, "alice")

	_, err := s.MutateUser(ctx, alice.ID, func(u *model.User) (bool, error) {
		u.IsActive = false
		return true, nil
	})
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// alice still holds the pre-deactivation copy; the callback must not.
	name := "Alice"
	got, err := s.MutateUser(ctx, alice.ID, func(u *model.User) (bool, error) {
		if u.IsActive {
			t.Error("callback received stale is_active")
		}
		u.FullName = &name
		return true, nil
	})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got.IsActive {
		t.Fatalf("rename reactivated the account: %+v", got)
	}
}

func TestMutateUserSkipsUnchanged(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := insertUser(t, s, "alice")

	sentinel := errors.New("boom")
	_, err := s.MutateUser(ctx, alice.ID, func(u *model.User) (bool, error) {
		u.IsActive = false
		return true, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}

	got, err := s.MutateUser(ctx, alice.ID, func(u *model.User) (bool, error) {
		u.Email = "ignored@example.com"
		return false, nil
	})
	if err != nil {
		t.Fatalf("no-op mutate: %v", err)
	}
	if !got.IsActive {
		t.Fatal("failed callback must not persist")
	}

	stored, err := s.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.Email != alice.Email || !stored.IsActive {
		t.Fatalf("unchanged mutation was written: %+v", stored)
	}
}
