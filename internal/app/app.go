// Package app wires configuration, storage and services together for the
// command-line entry points.
package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/99designs/keyring"
	"github.com/charmbracelet/log"

	"github.com/nhle/todo-service/internal/api"
	"github.com/nhle/todo-service/internal/auth"
	"github.com/nhle/todo-service/internal/credential"
	"github.com/nhle/todo-service/internal/directory"
	"github.com/nhle/todo-service/internal/model"
	"github.com/nhle/todo-service/internal/store"
	"github.com/nhle/todo-service/internal/todo"
	"github.com/nhle/todo-service/internal/token"
)

// ErrNoSigningKey is returned when neither auth.secret_key nor the keyring
// provides a token signing key.
var ErrNoSigningKey = errors.New("no token signing key: set SECRET_KEY or enable auth.use_keyring")

// App holds the long-lived components of a process.
type App struct {
	Config    *model.AppConfig
	Logger    *log.Logger
	Store     *store.SQLiteStore
	Directory *directory.Directory
	Todos     *todo.Service

	now     func() time.Time
	openKey func(dir string) (keyring.Keyring, error)
}

// Option configures an App.
type Option func(*App)

// WithClock overrides the time source shared by the store and services.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithKeyring overrides how the signing-key keyring is opened.
func WithKeyring(open func(dir string) (keyring.Keyring, error)) Option {
	return func(a *App) {
		a.openKey = open
	}
}

// NewLogger returns a logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "todo",
	}), nil
}

// Open opens the database named by cfg and builds the services over it.
func Open(cfg *model.AppConfig, logger *log.Logger, opts ...Option) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		now:     time.Now,
		openKey: credential.OpenKeyring,
	}
	for _, opt := range opts {
		opt(a)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path,
		store.WithClock(a.now),
		store.WithLogger(logger.WithPrefix("store")),
	)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Database.Path, err)
	}

	a.Store = s
	a.Directory = directory.New(s, credential.NewHasher(cfg.Auth.BcryptCost), a.now)
	a.Todos = todo.NewService(s, a.now)
	return a, nil
}

// SigningKey returns auth.secret_key when set, otherwise the key kept in the
// keyring when auth.use_keyring is enabled.
func (a *App) SigningKey() ([]byte, error) {
	if a.Config.Auth.SecretKey != "" {
		return []byte(a.Config.Auth.SecretKey), nil
	}
	if !a.Config.Auth.UseKeyring {
		return nil, ErrNoSigningKey
	}

	ring, err := a.openKey(a.Config.Auth.KeyringDir)
	if err != nil {
		return nil, err
	}
	key, err := credential.SigningKey(ring)
	if err != nil {
		return nil, err
	}
	a.Logger.Info("using signing key from keyring")
	return key, nil
}

// Auth builds the auth service with the configured signing key.
func (a *App) Auth() (*auth.Service, error) {
	key, err := a.SigningKey()
	if err != nil {
		return nil, err
	}
	tokens, err := token.NewService(key, token.WithClock(a.now))
	if err != nil {
		return nil, err
	}
	return auth.NewService(a.Directory, tokens, a.Config.Auth.TokenTTL), nil
}

// APIDeps collects what api.NewRouter needs.
func (a *App) APIDeps() (api.Deps, error) {
	authSvc, err := a.Auth()
	if err != nil {
		return api.Deps{}, err
	}
	return api.Deps{
		Auth:           authSvc,
		Todos:          a.Todos,
		Logger:         a.Logger.WithPrefix("http"),
		AllowedOrigins: a.Config.CORS.AllowedOrigins,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}
