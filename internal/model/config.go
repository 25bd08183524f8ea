package model

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	// Path is a file path or ":memory:".
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	// SecretKey signs access tokens. When empty and UseKeyring is set, the
	// key is read from (or generated into) the system keyring.
	SecretKey  string        `mapstructure:"secret_key" yaml:"secret_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
	UseKeyring bool          `mapstructure:"use_keyring" yaml:"use_keyring"`
	KeyringDir string        `mapstructure:"keyring_dir" yaml:"keyring_dir"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	CORS     CORSConfig     `mapstructure:"cors" yaml:"cors"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// EnvPrefix prefixes environment overrides, e.g. TODO_DATABASE_PATH.
const EnvPrefix = "TODO"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("database.path", "todo.db")
	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.token_ttl", "30m")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.use_keyring", false)
	v.SetDefault("auth.keyring_dir", "~/.config/todo-service/keys")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
}

// LoadConfig reads configuration from the given YAML file path using Viper
// and applies TODO_* environment overrides. An empty path or a missing file
// yields defaults plus environment.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// SECRET_KEY is honoured for deployments that predate the prefix.
	if err := v.BindEnv("auth.secret_key", EnvPrefix+"_AUTH_SECRET_KEY", "SECRET_KEY"); err != nil {
		return nil, fmt.Errorf("binding secret key env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("auth.token_ttl must be positive, got %s", cfg.Auth.TokenTTL)
	}

	return cfg, nil
}
