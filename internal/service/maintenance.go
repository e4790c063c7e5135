package service

import (
	"credflow/internal/repository"

	"go.uber.org/zap"
)

// MaintenanceService handles periodic cleanup
type MaintenanceService struct {
	tokens repository.ResetTokenRepository
	logger *zap.Logger
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(tokens repository.ResetTokenRepository, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		tokens: tokens,
		logger: logger,
	}
}

// CleanupExpiredTokens removes reset tokens past their expiry
func (s *MaintenanceService) CleanupExpiredTokens() error {
	s.logger.Info("Starting cleanup of expired reset tokens")

	removed, err := s.tokens.DeleteExpired()
	if err != nil {
		s.logger.Error("Failed to cleanup expired reset tokens", zap.Error(err))
		return err
	}

	s.logger.Info("Cleanup completed successfully", zap.Int64("removed", removed))
	return nil
}
