package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken       string        `env:"BOT_TOKEN" validate:"required"`
	BotUsername    string        `env:"BOT_USERNAME"`
	ResetTokenTTL  time.Duration `env:"RESET_TOKEN_TTL" validate:"gt=0"`
	SubmitTimeout  time.Duration `env:"SUBMIT_TIMEOUT" validate:"gte=0"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" validate:"required"`
	Database       DatabaseConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" validate:"required"`
	Port     string `env:"DB_PORT" validate:"required,numeric"`
	Name     string `env:"DB_NAME" validate:"required"`
	User     string `env:"DB_USER" validate:"required"`
	Password string `env:"DB_PASSWORD" validate:"required"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAdmin reads configuration for tools that talk to the database only.
// BOT_TOKEN is not required there.
func LoadAdmin() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if err := validate(&cfg.Database); err != nil {
		return nil, err
	}
	if cfg.ResetTokenTTL <= 0 {
		return nil, fmt.Errorf("RESET_TOKEN_TTL is invalid: %v", cfg.ResetTokenTTL)
	}

	return cfg, nil
}

func load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	resetTTL, err := getDuration("RESET_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	submitTimeout, err := getDuration("SUBMIT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		BotUsername:    os.Getenv("BOT_USERNAME"),
		ResetTokenTTL:  resetTTL,
		SubmitTimeout:  submitTimeout,
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "credflow"),
			User:     getEnv("DB_USER", "credflow"),
			Password: os.Getenv("DB_PASSWORD"),
		},
	}
	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// ResetLink returns the deep link opening the change-password dialog for token
func (c *Config) ResetLink(token string) string {
	if c.BotUsername == "" {
		return "/reset " + token
	}
	return fmt.Sprintf("https://t.me/%s?start=reset_%s", c.BotUsername, token)
}

// validate reports the first broken rule using the env variable name
func validate(cfg interface{}) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	default:
		return fmt.Errorf("%s is invalid: %v", fe.Field(), fe.Value())
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a duration: %w", key, err)
	}
	return d, nil
}
