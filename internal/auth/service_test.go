package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/todo-service/internal/apperr"
	"github.com/nhle/todo-service/internal/auth"
	"github.com/nhle/todo-service/internal/credential"
	"github.com/nhle/todo-service/internal/directory"
	"github.com/nhle/todo-service/internal/token"
	"github.com/nhle/todo-service/tests/testutil"
)

type fixture struct {
	svc    *auth.Service
	dir    *directory.Directory
	tokens *token.Service
	clock  *testutil.Clock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clock := testutil.NewClock(time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC))
	s := testutil.NewTestStore(t)
	dir := directory.New(s, credential.NewHasher(bcrypt.MinCost), clock.Now)
	tokens, err := token.NewService([]byte("test-secret"), token.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return fixture{
		svc:    auth.NewService(dir, tokens, 30*time.Minute),
		dir:    dir,
		tokens: tokens,
		clock:  clock,
	}
}

func (f fixture) register(t *testing.T, username string) {
	t.Helper()
	_, err := f.svc.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
}

func TestLoginAndResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	tok, err := f.svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.TokenType != "bearer" || tok.ExpiresIn != 1800 || tok.AccessToken == "" {
		t.Fatalf("unexpected token %+v", tok)
	}

	u, err := f.svc.Resolve(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("expected alice, got %s", u.Username)
	}

	f.clock.Advance(30 * time.Minute)
	if _, err := f.svc.Resolve(ctx, tok.AccessToken); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	for _, tc := range []struct{ username, password string }{
		{"alice", "wrong-password"},
		{"nobody", "password123"},
	} {
		if _, err := f.svc.Login(ctx, tc.username, tc.password); !errors.Is(err, apperr.ErrInvalidCredential) {
			t.Errorf("login %s: expected invalid credential, got %v", tc.username, err)
		}
	}
}

func TestResolveFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")
	alice, err := f.dir.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find alice: %v", err)
	}

	ghost, err := f.tokens.Issue(token.Subject{Username: "ghost", UserID: "x"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := f.svc.Resolve(ctx, ghost); !errors.Is(err, apperr.ErrUnknownSubject) {
		t.Fatalf("expected unknown subject, got %v", err)
	}

	mismatch, err := f.tokens.Issue(token.Subject{Username: "alice", UserID: "someone-else"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := f.svc.Resolve(ctx, mismatch); !errors.Is(err, apperr.ErrUnknownSubject) {
		t.Fatalf("expected unknown subject for id mismatch, got %v", err)
	}

	if _, err := f.svc.Resolve(ctx, "not-a-token"); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	valid, err := f.tokens.Issue(token.Subject{Username: "alice", UserID: alice.ID}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := f.dir.SetActive(ctx, "alice", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.svc.Resolve(ctx, valid); !errors.Is(err, apperr.ErrInactiveAccount) {
		t.Fatalf("expected inactive account, got %v", err)
	}

	// Login itself still succeeds for an inactive account.
	if _, err := f.svc.Login(ctx, "alice", "password123"); err != nil {
		t.Fatalf("login inactive: %v", err)
	}
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	first, err := f.svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	u, err := f.svc.Resolve(ctx, first.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	f.clock.Advance(20 * time.Minute)
	refreshed, err := f.svc.Refresh(ctx, u)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	f.clock.Advance(15 * time.Minute)
	if _, err := f.svc.Resolve(ctx, first.AccessToken); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected original token expired, got %v", err)
	}
	if _, err := f.svc.Resolve(ctx, refreshed.AccessToken); err != nil {
		t.Fatalf("refreshed token should still be valid: %v", err)
	}
}

func TestChangePasswordThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	u, err := f.dir.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := f.svc.ChangePassword(ctx, u, "wrong-password", "newpassword1"); !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential, got %v", err)
	}
	if err := f.svc.ChangePassword(ctx, u, "password123", "newpassword1"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := f.svc.Login(ctx, "alice", "password123"); !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Fatalf("old password should fail, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "alice", "newpassword1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")
	f.register(t, "bob")

	u, err := f.dir.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	taken := "bob@example.com"
	if _, err := f.svc.UpdateProfile(ctx, u, directory.ProfileUpdate{Email: &taken}); !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	email := "alice@new.example.com"
	updated, err := f.svc.UpdateProfile(ctx, u, directory.ProfileUpdate{Email: &email})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Email != email || updated.UpdatedAt == nil {
		t.Fatalf("unexpected profile %+v", updated)
	}
}
