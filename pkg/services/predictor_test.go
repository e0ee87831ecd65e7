package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/llm"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
)

func newPredictionFixture(chat *llm.MockChatClient) (PredictionService, *mockVehicleRepo, *mockRunLogRepo, *mockSalesRepo) {
	logger := zap.NewNop()

	scheduleRepo := &mockScheduleRepo{
		schedule: &models.JobSchedule{
			ID:        1,
			Time:      time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC),
			MaxRecord: 10,
			AIIQR:     1.5,
			AITemp:    0.8,
		},
	}
	vehicleRepo := newMockVehicleRepo()
	runLogRepo := &mockRunLogRepo{}
	salesRepo := &mockSalesRepo{
		sales: []*models.VehicleSale{
			{Grade: strPtr("A"), SellingPrice: "150.000.000", SaleDate: "10/04/2024"},
		},
	}
	sourceRepo := &mockDataSourceRepo{
		sources: []*models.DataSource{
			{ID: 1, Address: "https://example.com/listings", Status: true},
			{ID: 2, Address: "https://inactive.example.com", Status: false},
		},
	}
	paramRepo := &mockDataParameterRepo{
		params: []*models.DataParameter{
			{ID: 1, Parameter: "Model", TableColumn: "name", Status: true},
			{ID: 2, Parameter: "Tahun", TableColumn: "year", Status: true},
			{ID: 3, Parameter: "Odometer", TableColumn: "odometer", Status: false},
		},
	}

	scheduleSvc := NewScheduleConfigService(scheduleRepo, logger)
	estimator := NewPriceEstimator(chat, logger)
	historical := NewHistoricalPriceService(salesRepo, logger)
	runLogger := NewRunLoggerService(runLogRepo, logger)

	svc := NewPredictionService(scheduleSvc, estimator, historical, sourceRepo, paramRepo, vehicleRepo, runLogger, logger)
	return svc, vehicleRepo, runLogRepo, salesRepo
}

func TestPredictSingle(t *testing.T) {
	chat := &llm.MockChatClient{
		GenerateResponseFunc: func(_ context.Context, prompt string, temperature float64) (*llm.GenerateResponseResult, error) {
			// Only active sources and parameters reach the prompt.
			assert.Contains(t, prompt, "https://example.com/listings")
			assert.NotContains(t, prompt, "inactive.example.com")
			assert.Contains(t, prompt, `Parameter pencarian: Model "Toyota Avanza", Tahun "2019"`)
			assert.NotContains(t, prompt, "Odometer")
			assert.Equal(t, 0.8, temperature)
			return &llm.GenerateResponseResult{
				Content:     `{"harga_terendah":120000000,"harga_tertinggi":150000000}`,
				TotalTokens: 512,
			}, nil
		},
	}
	svc, _, _, salesRepo := newPredictionFixture(chat)

	result, err := svc.PredictSingle(context.Background(), PredictRequest{
		Name:         "Toyota Avanza",
		Year:         2019,
		Transmission: "Manual",
		Fuel:         "Bensin",
		Region:       "Kota Surabaya, Provinsi Jawa Timur",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(120000000), result.PriceLow)
	assert.Equal(t, int64(150000000), result.PriceHigh)
	assert.Equal(t, 512, result.TotalTokens)
	assert.Equal(t, []string{"https://example.com/listings"}, result.ReferenceSources)

	require.NotNil(t, result.HistoricalPrice)
	assert.Equal(t, int64(150000000), *result.HistoricalPrice)
	require.NotNil(t, result.HistoricalDate)
	assert.Equal(t, "10/04/2024", *result.HistoricalDate)

	// The lookup sees the stripped city, not the full region label.
	assert.Equal(t, "Surabaya", salesRepo.gotCity)
	assert.Equal(t, "2019", salesRepo.gotYear)
}

func TestPredictSingleValidatesInput(t *testing.T) {
	svc, _, _, _ := newPredictionFixture(&llm.MockChatClient{})

	_, err := svc.PredictSingle(context.Background(), PredictRequest{Year: 2019})
	assert.Error(t, err)

	_, err = svc.PredictSingle(context.Background(), PredictRequest{Name: "Avanza"})
	assert.Error(t, err)
}

func TestPredictSinglePropagatesParseError(t *testing.T) {
	chat := &llm.MockChatClient{
		GenerateResponseFunc: func(_ context.Context, _ string, _ float64) (*llm.GenerateResponseResult, error) {
			return &llm.GenerateResponseResult{Content: "no json here"}, nil
		},
	}
	svc, _, _, _ := newPredictionFixture(chat)

	_, err := svc.PredictSingle(context.Background(), PredictRequest{Name: "Avanza", Year: 2019})

	var parseErr *EstimateParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestUpdateVehicle(t *testing.T) {
	svc, vehicleRepo, runLogRepo, _ := newPredictionFixture(&llm.MockChatClient{})

	id := uuid.New()
	userID := 9
	err := svc.UpdateVehicle(context.Background(), id, VehicleUpdateRequest{
		Description: "Avanza",
		Year:        2019,
		Region:      "Kota Surabaya, Provinsi Jawa Timur",
		PriceLow:    120000000,
		PriceHigh:   150000000,
		TotalTokens: 512,
		UserID:      &userID,
	})
	require.NoError(t, err)

	update, ok := vehicleRepo.updateFor(id)
	require.True(t, ok)
	assert.Equal(t, int64(120000000), update.PriceLow)
	assert.Equal(t, int64(150000000), update.PriceHigh)
	require.NotNil(t, update.HistoryPrice)
	assert.Equal(t, int64(150000000), *update.HistoryPrice)
	assert.False(t, update.CheckedDate.IsZero())

	logs := runLogRepo.all()
	require.Len(t, logs, 1)
	assert.Equal(t, models.RunTypeManual, logs[0].Type)
	assert.Equal(t, 1, logs[0].TotalData)
	assert.Equal(t, 512, logs[0].TotalToken)
	assert.Equal(t, 512.0, logs[0].AverageToken)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, 9, *logs[0].UserID)
}
