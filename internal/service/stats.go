package service

import (
	"djbot/internal/domain"
	"djbot/internal/repository"

	"go.uber.org/zap"
)

// StatsService handles statistics and cleanup
type StatsService struct {
	interactionRepo repository.InteractionRepository
	retentionDays   int
	logger          *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(interactionRepo repository.InteractionRepository, retentionDays int, logger *zap.Logger) *StatsService {
	return &StatsService{
		interactionRepo: interactionRepo,
		retentionDays:   retentionDays,
		logger:          logger,
	}
}

// CleanupOldData removes chat log entries older than the retention window
func (s *StatsService) CleanupOldData() error {
	if s.retentionDays <= 0 {
		s.logger.Debug("Interaction cleanup disabled")
		return nil
	}

	s.logger.Info("Starting cleanup of old interactions", zap.Int("retention_days", s.retentionDays))

	err := s.interactionRepo.CleanOldInteractions(s.retentionDays)
	if err != nil {
		s.logger.Error("Failed to cleanup old interactions", zap.Error(err))
		return err
	}

	s.logger.Info("Cleanup completed successfully")
	return nil
}

// RecentHistory returns the latest chat log entries of a user, newest first
func (s *StatsService) RecentHistory(userID int64, limit int) ([]domain.Interaction, error) {
	return s.interactionRepo.RecentInteractions(userID, limit)
}
