package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
)

// RunLoggerService persists one audit row per refresh execution.
type RunLoggerService interface {
	// Record writes a run log row. A run with zero records is skipped
	// entirely so average_token is always well defined.
	Record(ctx context.Context, runType string, totalData, totalTokens int, duration time.Duration, userID *int) error
}

type runLoggerService struct {
	repo   repositories.RunLogRepository
	logger *zap.Logger
}

func NewRunLoggerService(repo repositories.RunLogRepository, logger *zap.Logger) RunLoggerService {
	return &runLoggerService{
		repo:   repo,
		logger: logger.Named("run-logger"),
	}
}

var _ RunLoggerService = (*runLoggerService)(nil)

func (s *runLoggerService) Record(ctx context.Context, runType string, totalData, totalTokens int, duration time.Duration, userID *int) error {
	if totalData == 0 {
		s.logger.Debug("Skipping run log for empty run", zap.String("type", runType))
		return nil
	}

	entry := &models.RunLog{
		Type:         runType,
		Date:         time.Now(),
		TotalData:    totalData,
		TotalToken:   totalTokens,
		AverageToken: float64(totalTokens) / float64(totalData),
		Duration:     int(duration.Seconds()),
		UserID:       userID,
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("Failed to insert run log",
			zap.String("type", runType),
			zap.Int("total_data", totalData),
			zap.Error(err))
		return err
	}

	s.logger.Info("Run logged",
		zap.String("type", runType),
		zap.Int("total_data", totalData),
		zap.Int("total_token", totalTokens),
		zap.Float64("average_token", entry.AverageToken),
		zap.Int("duration_seconds", entry.Duration))
	return nil
}
