package testutil

import (
	"time"

	"credflow/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestChat creates a test chat
func NewTestChat(chatID int64, login string, authorized bool) *domain.Chat {
	return &domain.Chat{
		ChatID:     chatID,
		Login:      login,
		Authorized: authorized,
		CreatedAt:  time.Now(),
	}
}

// HashPassword hashes password with the minimal bcrypt cost to keep tests fast
func HashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}
