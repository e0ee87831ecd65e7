package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
)

// mockScheduleRepo implements repositories.ScheduleRepository for testing.
type mockScheduleRepo struct {
	mu       sync.Mutex
	schedule *models.JobSchedule
	getErr   error
	updErr   error
}

func (m *mockScheduleRepo) GetFirst(_ context.Context) (*models.JobSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.schedule == nil {
		return nil, apperrors.ErrScheduleNotConfigured
	}
	copied := *m.schedule
	return &copied, nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id int) (*models.JobSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.schedule == nil || m.schedule.ID != id {
		return nil, apperrors.ErrNotFound
	}
	copied := *m.schedule
	return &copied, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, schedule *models.JobSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updErr != nil {
		return m.updErr
	}
	copied := *schedule
	m.schedule = &copied
	return nil
}

func (m *mockScheduleRepo) setTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule.Time = t
}

// mockVehicleRepo implements repositories.VehicleRepository for testing.
type mockVehicleRepo struct {
	mu        sync.Mutex
	stale     []*models.Vehicle
	updates   map[uuid.UUID]models.PriceUpdate
	selectErr error
	updateErr error
}

func newMockVehicleRepo(stale ...*models.Vehicle) *mockVehicleRepo {
	return &mockVehicleRepo{
		stale:   stale,
		updates: make(map[uuid.UUID]models.PriceUpdate),
	}
}

func (m *mockVehicleRepo) SelectStaleBatch(_ context.Context, limit int) ([]*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	if len(m.stale) > limit {
		return m.stale[:limit], nil
	}
	return m.stale, nil
}

func (m *mockVehicleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.stale {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockVehicleRepo) List(_ context.Context, _ repositories.VehicleListOptions) ([]*models.Vehicle, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale, len(m.stale), nil
}

func (m *mockVehicleRepo) UpdatePriceFields(_ context.Context, id uuid.UUID, update models.PriceUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates[id] = update
	return nil
}

func (m *mockVehicleRepo) CountCreatedBetween(_ context.Context, _, _ time.Time) (int, error) {
	return len(m.stale), nil
}

func (m *mockVehicleRepo) CountPending(_ context.Context, _, _ time.Time) (int, error) {
	return len(m.stale), nil
}

func (m *mockVehicleRepo) CountProcessed(_ context.Context, _, _ time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates), nil
}

func (m *mockVehicleRepo) updateFor(id uuid.UUID) (models.PriceUpdate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.updates[id]
	return u, ok
}

// mockSalesRepo implements repositories.VehicleSalesRepository for testing.
type mockSalesRepo struct {
	sales    []*models.VehicleSale
	queryErr error

	gotName string
	gotYear string
	gotCity string
}

func (m *mockSalesRepo) QueryMatches(_ context.Context, name, year, city string) ([]*models.VehicleSale, error) {
	m.gotName = name
	m.gotYear = year
	m.gotCity = city
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.sales, nil
}

// mockRunLogRepo implements repositories.RunLogRepository for testing.
type mockRunLogRepo struct {
	mu        sync.Mutex
	logs      []*models.RunLog
	insertErr error
}

func (m *mockRunLogRepo) Insert(_ context.Context, log *models.RunLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	log.ID = len(m.logs) + 1
	log.CreatedAt = time.Now()
	log.UpdatedAt = time.Now()
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockRunLogRepo) ListBetween(_ context.Context, _, _ time.Time) ([]*models.RunLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logs, nil
}

func (m *mockRunLogRepo) all() []*models.RunLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.RunLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// mockDataSourceRepo implements repositories.DataSourceRepository for testing.
type mockDataSourceRepo struct {
	sources []*models.DataSource
	listErr error
}

func (m *mockDataSourceRepo) ListActive(_ context.Context) ([]*models.DataSource, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var active []*models.DataSource
	for _, src := range m.sources {
		if src.Status {
			active = append(active, src)
		}
	}
	return active, nil
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

// mockUserRepo implements repositories.UserRepository for testing.
type mockUserRepo struct {
	users  []*models.User
	getErr error
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = len(m.users) + 1
	m.users = append(m.users, user)
	return nil
}

// mockDataParameterRepo implements repositories.DataParameterRepository for testing.
type mockDataParameterRepo struct {
	params  []*models.DataParameter
	listErr error
}

func (m *mockDataParameterRepo) ListActive(_ context.Context) ([]*models.DataParameter, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var active []*models.DataParameter
	for _, p := range m.params {
		if p.Status {
			active = append(active, p)
		}
	}
	return active, nil
}

func (m *mockDataParameterRepo) List(_ context.Context) ([]*models.DataParameter, error) {
	return m.params, nil
}

func (m *mockDataParameterRepo) GetByID(_ context.Context, id int) (*models.DataParameter, error) {
	for _, p := range m.params {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockDataParameterRepo) Create(_ context.Context, param *models.DataParameter) error {
	param.ID = len(m.params) + 1
	m.params = append(m.params, param)
	return nil
}

func (m *mockDataParameterRepo) Update(_ context.Context, param *models.DataParameter) error {
	for i, p := range m.params {
		if p.ID == param.ID {
			m.params[i] = param
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockDataParameterRepo) Delete(_ context.Context, id int) error {
	for i, p := range m.params {
		if p.ID == id {
			m.params = append(m.params[:i], m.params[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}
