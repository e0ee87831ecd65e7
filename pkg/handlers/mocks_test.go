package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
	"github.com/lelangtech/pricewatch-engine/pkg/services"
)

// mockPredictionService implements services.PredictionService for testing.
type mockPredictionService struct {
	predictResult *services.PredictResult
	predictErr    error
	updateErr     error

	gotUpdateID  uuid.UUID
	gotUpdateReq services.VehicleUpdateRequest
}

func (m *mockPredictionService) PredictSingle(_ context.Context, req services.PredictRequest) (*services.PredictResult, error) {
	if m.predictErr != nil {
		return nil, m.predictErr
	}
	return m.predictResult, nil
}

func (m *mockPredictionService) UpdateVehicle(_ context.Context, id uuid.UUID, req services.VehicleUpdateRequest) error {
	m.gotUpdateID = id
	m.gotUpdateReq = req
	return m.updateErr
}

// mockScheduleService implements services.ScheduleConfigService for testing.
type mockScheduleService struct {
	schedule  *models.JobSchedule
	updateErr error

	gotUpdate *models.JobSchedule
}

func (m *mockScheduleService) Current(_ context.Context) (*models.JobSchedule, error) {
	if m.schedule == nil {
		return nil, apperrors.ErrScheduleNotConfigured
	}
	return m.schedule, nil
}

func (m *mockScheduleService) Update(_ context.Context, schedule *models.JobSchedule) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.gotUpdate = schedule
	return nil
}

// mockAuthService implements services.AuthService for testing.
type mockAuthService struct {
	user       *models.User
	token      string
	loginErr   error
	currentErr error
}

func (m *mockAuthService) Login(_ context.Context, email, password string) (*models.User, string, time.Time, error) {
	if m.loginErr != nil {
		return nil, "", time.Time{}, m.loginErr
	}
	return m.user, m.token, time.Now().Add(time.Hour), nil
}

func (m *mockAuthService) CurrentUser(_ context.Context, id int) (*models.User, error) {
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	return m.user, nil
}

func (m *mockAuthService) SeedAdmin(_ context.Context, name, email, password string) error {
	return nil
}

// mockDashboardService implements services.DashboardService for testing.
type mockDashboardService struct {
	total     int
	pending   int
	processed int
	logs      []*models.RunLog
	err       error
}

func (m *mockDashboardService) VehicleCount(_ context.Context, _, _ time.Time) (int, error) {
	return m.total, m.err
}

func (m *mockDashboardService) PendingCount(_ context.Context, _, _ time.Time) (int, error) {
	return m.pending, m.err
}

func (m *mockDashboardService) ProcessedCount(_ context.Context, _, _ time.Time) (int, error) {
	return m.processed, m.err
}

func (m *mockDashboardService) RunLogs(_ context.Context, _, _ time.Time) ([]*models.RunLog, error) {
	return m.logs, m.err
}

// mockVehicleRepo implements repositories.VehicleRepository for testing.
type mockVehicleRepo struct {
	vehicles []*models.Vehicle
	listErr  error

	gotOpts repositories.VehicleListOptions
}

func (m *mockVehicleRepo) SelectStaleBatch(_ context.Context, _ int) ([]*models.Vehicle, error) {
	return m.vehicles, nil
}

func (m *mockVehicleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Vehicle, error) {
	for _, v := range m.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockVehicleRepo) List(_ context.Context, opts repositories.VehicleListOptions) ([]*models.Vehicle, int, error) {
	m.gotOpts = opts
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.vehicles, len(m.vehicles), nil
}

func (m *mockVehicleRepo) UpdatePriceFields(_ context.Context, _ uuid.UUID, _ models.PriceUpdate) error {
	return nil
}

func (m *mockVehicleRepo) CountCreatedBetween(_ context.Context, _, _ time.Time) (int, error) {
	return len(m.vehicles), nil
}

func (m *mockVehicleRepo) CountPending(_ context.Context, _, _ time.Time) (int, error) {
	return len(m.vehicles), nil
}

func (m *mockVehicleRepo) CountProcessed(_ context.Context, _, _ time.Time) (int, error) {
	return 0, nil
}

// mockDataSourceRepo implements repositories.DataSourceRepository for testing.
type mockDataSourceRepo struct {
	sources []*models.DataSource
}

func (m *mockDataSourceRepo) ListActive(_ context.Context) ([]*models.DataSource, error) {
	return m.sources, nil
}

func (m *mockDataSourceRepo) List(_ context.Context) ([]*models.DataSource, error) {
	return m.sources, nil
}

func (m *mockDataSourceRepo) GetByID(_ context.Context, id int) (*models.DataSource, error) {
	for _, src := range m.sources {
		if src.ID == id {
			return src, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockDataSourceRepo) Create(_ context.Context, source *models.DataSource) error {
	source.ID = len(m.sources) + 1
	m.sources = append(m.sources, source)
	return nil
}

func (m *mockDataSourceRepo) Update(_ context.Context, source *models.DataSource) error {
	for i, src := range m.sources {
		if src.ID == source.ID {
			m.sources[i] = source
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockDataSourceRepo) Delete(_ context.Context, id int) error {
	for i, src := range m.sources {
		if src.ID == id {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}
