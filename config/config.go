// Package config loads the client and reference backend settings from the environment.
//
// A .env file in the working directory is loaded first when present; real environment
// variables take precedence over it.
package config

import (
	"fmt"
	"strings"
	"time"

	"TaskClient/store"
	"TaskClient/wire"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Storage drivers for the reference backend.
const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
)

type Config struct {
	// Client: where the backend lives and how it names things.
	APIBaseURL       string `env:"API_BASE_URL" default:"http://localhost:8080/api"`
	APILoginPath     string `env:"API_LOGIN_PATH" default:"/account/login"`
	APITasksResource string `env:"API_TASKS_RESOURCE" default:"tareas"`
	FieldUsername    string `env:"API_FIELD_USERNAME" default:"nombreUsuario"`
	FieldPassword    string `env:"API_FIELD_PASSWORD" default:"contrasena"`
	FieldToken       string `env:"API_FIELD_TOKEN" default:"token"`
	FieldRole        string `env:"API_FIELD_ROLE" default:"rol"`
	UseMockService   bool   `env:"USE_MOCK_SERVICE" default:"false"`
	Theme            string `env:"UI_THEME" default:"color"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Reference backend.
	Port                string        `env:"PORT" default:"8080"`
	SecretKey           string        `env:"SECRET_KEY"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" default:"24h"`
	AdminUsername       string        `env:"USER_USERNAME_ADMIN" default:"admin"`
	AdminPassword       string        `env:"USER_PASSWORD_ADMIN" default:"admin"`
	UserUsername        string        `env:"USER_USERNAME_NORMAL" default:"user"`
	UserPassword        string        `env:"USER_PASSWORD_NORMAL" default:"user"`
	DeleteRequiresAdmin bool          `env:"DELETE_REQUIRES_ADMIN" default:"true"`
	RateLimit           float64       `env:"RATE_LIMIT" default:"2"`
	RateBurst           int           `env:"RATE_BURST" default:"20"`
	StoreDriver         string        `env:"STORE_DRIVER" default:"memory"`
	DBUsername          string        `env:"DB_USERNAME"`
	DBPassword          string        `env:"DB_PASSWORD"`
	DBAddress           string        `env:"DB_ADDRESS" default:"localhost:3307"`
	DBName              string        `env:"DB_NAME" default:"taskdb"`
}

// Load reads .env (if any) and the environment into a validated Config.
func Load() (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that every command depends on.
func (c *Config) Validate() error {
	if err := c.Endpoints().Validate(); err != nil {
		return err
	}
	fields := map[string]string{
		"API_FIELD_USERNAME": c.FieldUsername,
		"API_FIELD_PASSWORD": c.FieldPassword,
		"API_FIELD_TOKEN":    c.FieldToken,
		"API_FIELD_ROLE":     c.FieldRole,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	switch c.StoreDriver {
	case StoreMemory, StoreMySQL:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StoreMySQL, c.StoreDriver)
	}
	return nil
}

// ValidateBackend checks the settings only the reference backend needs.
func (c *Config) ValidateBackend() error {
	if len(c.SecretKey) < 16 {
		return fmt.Errorf("SECRET_KEY must be at least 16 characters")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_BURST must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.StoreDriver == StoreMySQL && c.DBUsername == "" {
		return fmt.Errorf("DB_USERNAME is required when STORE_DRIVER is %q", StoreMySQL)
	}
	return nil
}

// Endpoints returns the wire endpoints described by the configuration.
func (c *Config) Endpoints() wire.Endpoints {
	return wire.Endpoints{
		BaseURL:       c.APIBaseURL,
		LoginPath:     c.APILoginPath,
		TasksResource: c.APITasksResource,
	}
}

// FieldNames returns the wire login field names.
func (c *Config) FieldNames() wire.FieldNames {
	return wire.FieldNames{
		Username: c.FieldUsername,
		Password: c.FieldPassword,
		Token:    c.FieldToken,
		Role:     c.FieldRole,
	}
}

// MySQL returns the database settings of the reference backend.
func (c *Config) MySQL() store.MySQLConfig {
	return store.MySQLConfig{
		User:     c.DBUsername,
		Password: c.DBPassword,
		Address:  c.DBAddress,
		DBName:   c.DBName,
	}
}
