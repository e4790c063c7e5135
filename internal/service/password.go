package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"credflow/internal/domain"
	"credflow/internal/repository"
	"credflow/internal/stability"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordService manages account passwords and reset tokens
type PasswordService struct {
	accounts repository.AccountRepository
	tokens   repository.ResetTokenRepository
	tokenTTL time.Duration
	cost     int
	logger   *zap.Logger
	now      func() time.Time
}

// NewPasswordService creates a new password service
func NewPasswordService(
	accounts repository.AccountRepository,
	tokens repository.ResetTokenRepository,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *PasswordService {
	return &PasswordService{
		accounts: accounts,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		cost:     bcrypt.DefaultCost,
		logger:   logger,
		now:      time.Now,
	}
}

// ChangePassword sets a new password for the account the reset token was issued to
func (s *PasswordService) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	if req.Token == "" {
		return domain.ErrInvalidToken
	}
	if req.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(req.Password) > stability.MaxBytes {
		s.logger.Warn("Rejected password change", zap.Error(domain.ErrPasswordTooLong))
		return domain.ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accounts.ResetPassword(ctx, req.Token, string(hash)); err != nil {
		return err
	}

	s.logger.Info("Password reset completed")
	return nil
}

// IssueResetToken creates a token allowing one password change for login
func (s *PasswordService) IssueResetToken(ctx context.Context, login string) (string, error) {
	login = strings.TrimSpace(login)
	if _, err := s.accounts.GetPasswordHash(ctx, login); err != nil {
		return "", err
	}

	token := uuid.NewString()
	expiresAt := s.now().Add(s.tokenTTL)
	if err := s.tokens.CreateToken(ctx, token, login, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	s.logger.Info("Reset token issued",
		zap.String("login", login),
		zap.Time("expires_at", expiresAt),
	)
	return token, nil
}

// CreateAccount registers a login with the given password
func (s *PasswordService) CreateAccount(ctx context.Context, login, password string) error {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return fmt.Errorf("login and password cannot be empty")
	}
	if len(password) > stability.MaxBytes {
		return domain.ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.accounts.CreateAccount(ctx, login, string(hash))
}
