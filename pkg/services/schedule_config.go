package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
)

// ScheduleConfigService reads and updates the refresh schedule.
type ScheduleConfigService interface {
	// Current returns the active schedule row. Returns
	// apperrors.ErrScheduleNotConfigured when the table is empty.
	Current(ctx context.Context) (*models.JobSchedule, error)
	Update(ctx context.Context, schedule *models.JobSchedule) error
}

type scheduleConfigService struct {
	repo   repositories.ScheduleRepository
	logger *zap.Logger
}

func NewScheduleConfigService(repo repositories.ScheduleRepository, logger *zap.Logger) ScheduleConfigService {
	return &scheduleConfigService{
		repo:   repo,
		logger: logger.Named("schedule-config"),
	}
}

var _ ScheduleConfigService = (*scheduleConfigService)(nil)

func (s *scheduleConfigService) Current(ctx context.Context) (*models.JobSchedule, error) {
	schedule, err := s.repo.GetFirst(ctx)
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleConfigService) Update(ctx context.Context, schedule *models.JobSchedule) error {
	if err := s.repo.Update(ctx, schedule); err != nil {
		s.logger.Error("Failed to update schedule",
			zap.Int("id", schedule.ID),
			zap.Error(err))
		return err
	}

	s.logger.Info("Schedule updated",
		zap.Int("id", schedule.ID),
		zap.Time("time", schedule.Time),
		zap.Int("max_record", schedule.MaxRecord))
	return nil
}
