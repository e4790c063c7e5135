package repository

import (
	"context"
	"time"

	"credflow/internal/domain"
)

// ChatRepository defines chat data operations
type ChatRepository interface {
	IsAuthorized(chatID int64) (bool, error)
	// GetChat returns nil, nil for an unknown chat
	GetChat(chatID int64) (*domain.Chat, error)
	AuthorizeChat(chatID int64, login string) error
	EnsureChatExists(chatID int64) error
	RevokeChat(chatID int64) error
}

// AccountRepository defines account credential operations
type AccountRepository interface {
	CreateAccount(ctx context.Context, login, passwordHash string) error
	GetPasswordHash(ctx context.Context, login string) (string, error)
	// ResetPassword consumes a live reset token and sets the hash of its account
	ResetPassword(ctx context.Context, token, passwordHash string) error
}

// ResetTokenRepository defines reset token operations
type ResetTokenRepository interface {
	CreateToken(ctx context.Context, token, login string, expiresAt time.Time) error
	DeleteExpired() (int64, error)
}
