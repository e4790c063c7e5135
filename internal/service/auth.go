package service

import (
	"context"
	"errors"
	"fmt"

	"credflow/internal/domain"
	"credflow/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication logic
type AuthService struct {
	accounts repository.AccountRepository
	chats    repository.ChatRepository
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(accounts repository.AccountRepository, chats repository.ChatRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		chats:    chats,
		logger:   logger,
	}
}

// Login verifies that the password matches the stored hash of the login
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) error {
	hash, err := s.accounts.GetPasswordHash(ctx, creds.Login)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)); err != nil {
		s.logger.Info("Password mismatch", zap.String("login", creds.Login))
		return domain.ErrInvalidCredentials
	}
	return nil
}

// IsAuthorized checks if chat is authorized
func (s *AuthService) IsAuthorized(chatID int64) (bool, error) {
	return s.chats.IsAuthorized(chatID)
}

// GetChat returns the chat record, an unknown chat comes back unauthorized
func (s *AuthService) GetChat(chatID int64) (*domain.Chat, error) {
	chat, err := s.chats.GetChat(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	if chat == nil {
		return &domain.Chat{ChatID: chatID}, nil
	}
	return chat, nil
}

// AuthorizeChat binds chat to the logged in account
func (s *AuthService) AuthorizeChat(chatID int64, login string) error {
	return s.chats.AuthorizeChat(chatID, login)
}

// EnsureChatExists creates chat record if doesn't exist
func (s *AuthService) EnsureChatExists(chatID int64) error {
	return s.chats.EnsureChatExists(chatID)
}

// RevokeChat logs the chat out
func (s *AuthService) RevokeChat(chatID int64) error {
	return s.chats.RevokeChat(chatID)
}
