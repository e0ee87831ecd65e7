package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/cache"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
)

// countCacheTTL keeps dashboard counts hot without letting them drift far
// behind the scheduler's writes.
const countCacheTTL = time.Minute

// DashboardService aggregates counts for the monitoring dashboard.
type DashboardService interface {
	// VehicleCount counts vehicles created inside the range.
	VehicleCount(ctx context.Context, start, end time.Time) (int, error)
	// PendingCount counts vehicles created inside the range that have never
	// been price checked.
	PendingCount(ctx context.Context, start, end time.Time) (int, error)
	// ProcessedCount counts vehicles checked inside the range.
	ProcessedCount(ctx context.Context, start, end time.Time) (int, error)
	// RunLogs lists run log rows created inside the range, oldest first.
	RunLogs(ctx context.Context, start, end time.Time) ([]*models.RunLog, error)
}

type dashboardService struct {
	vehicles repositories.VehicleRepository
	runLogs  repositories.RunLogRepository
	cache    *cache.Cache
	logger   *zap.Logger
}

func NewDashboardService(
	vehicles repositories.VehicleRepository,
	runLogs repositories.RunLogRepository,
	cache *cache.Cache,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		vehicles: vehicles,
		runLogs:  runLogs,
		cache:    cache,
		logger:   logger.Named("dashboard"),
	}
}

var _ DashboardService = (*dashboardService)(nil)

func (s *dashboardService) VehicleCount(ctx context.Context, start, end time.Time) (int, error) {
	return s.cachedCount(ctx, "total", start, end, func() (int, error) {
		return s.vehicles.CountCreatedBetween(ctx, start, end)
	})
}

func (s *dashboardService) PendingCount(ctx context.Context, start, end time.Time) (int, error) {
	return s.cachedCount(ctx, "pending", start, end, func() (int, error) {
		return s.vehicles.CountPending(ctx, start, end)
	})
}

func (s *dashboardService) ProcessedCount(ctx context.Context, start, end time.Time) (int, error) {
	return s.cachedCount(ctx, "processed", start, end, func() (int, error) {
		return s.vehicles.CountProcessed(ctx, start, end)
	})
}

func (s *dashboardService) RunLogs(ctx context.Context, start, end time.Time) ([]*models.RunLog, error) {
	logs, err := s.runLogs.ListBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("Failed to list run logs", zap.Error(err))
		return nil, err
	}
	return logs, nil
}

func (s *dashboardService) cachedCount(ctx context.Context, name string, start, end time.Time, load func() (int, error)) (int, error) {
	key := fmt.Sprintf("dashboard:%s:%d:%d", name, start.Unix(), end.Unix())

	var count int
	if s.cache.GetJSON(ctx, key, &count) {
		return count, nil
	}

	count, err := load()
	if err != nil {
		s.logger.Error("Failed to count vehicles",
			zap.String("counter", name),
			zap.Error(err))
		return 0, err
	}

	s.cache.SetJSON(ctx, key, count, countCacheTTL)
	return count, nil
}
