package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the variables Load refuses to run without
func setRequiredEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("DB_PASSWORD", "test_db_password")
}

// clearOptionalEnv makes Load fall back to defaults
func clearOptionalEnv(t *testing.T) {
	for _, key := range []string{
		"BOT_USERNAME", "RESET_TOKEN_TTL", "SUBMIT_TIMEOUT", "MIGRATIONS_PATH",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER",
	} {
		t.Setenv(key, "")
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	d, err := getDuration("TEST_DURATION", time.Second)
	assert.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	t.Setenv("TEST_DURATION", "")
	d, err = getDuration("TEST_DURATION", time.Second)
	assert.NoError(t, err)
	assert.Equal(t, time.Second, d)

	t.Setenv("TEST_DURATION", "soon")
	_, err = getDuration("TEST_DURATION", time.Second)
	assert.ErrorContains(t, err, "TEST_DURATION")
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestConfig_ResetLink(t *testing.T) {
	cfg := &Config{BotUsername: "credflow_bot"}
	assert.Equal(t, "https://t.me/credflow_bot?start=reset_abc", cfg.ResetLink("abc"))

	cfg.BotUsername = ""
	assert.Equal(t, "/reset abc", cfg.ResetLink("abc"))
}

func TestLoad_WithDefaults(t *testing.T) {
	clearOptionalEnv(t)
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "test_token", cfg.BotToken)
	assert.Equal(t, 24*time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 10*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "credflow", cfg.Database.Name)
	assert.Equal(t, "credflow", cfg.Database.User)
	assert.Equal(t, "test_db_password", cfg.Database.Password)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		contains string
	}{
		{
			name:     "missing bot token",
			env:      map[string]string{"BOT_TOKEN": "", "DB_PASSWORD": ""},
			contains: "BOT_TOKEN is required",
		},
		{
			name:     "missing db password",
			env:      map[string]string{"DB_PASSWORD": ""},
			contains: "DB_PASSWORD is required",
		},
		{
			name:     "non numeric port",
			env:      map[string]string{"DB_PORT": "postgres"},
			contains: "DB_PORT is invalid",
		},
		{
			name:     "zero token ttl",
			env:      map[string]string{"RESET_TOKEN_TTL": "0s"},
			contains: "RESET_TOKEN_TTL is invalid",
		},
		{
			name:     "unparsable timeout",
			env:      map[string]string{"SUBMIT_TIMEOUT": "fast"},
			contains: "SUBMIT_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearOptionalEnv(t)
			setRequiredEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadAdmin_DoesNotNeedBotToken(t *testing.T) {
	clearOptionalEnv(t)
	setRequiredEnv(t)
	t.Setenv("BOT_TOKEN", "")

	cfg, err := LoadAdmin()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.ResetTokenTTL)

	_, err = Load()
	assert.EqualError(t, err, "BOT_TOKEN is required")
}

func TestLoadAdmin_Errors(t *testing.T) {
	clearOptionalEnv(t)
	setRequiredEnv(t)
	t.Setenv("DB_PASSWORD", "")

	_, err := LoadAdmin()
	assert.EqualError(t, err, "DB_PASSWORD is required")

	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("RESET_TOKEN_TTL", "-1h")

	_, err = LoadAdmin()
	assert.EqualError(t, err, "RESET_TOKEN_TTL is invalid: -1h0m0s")
}
