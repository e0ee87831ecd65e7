package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/models"
)

func TestDashboardVehicleCount(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{total: 42}, zap.NewNop())

	r := httptest.NewRequest("GET", "/api/dashboard/vehicles/count?startDate=2025-01-01&endDate=2025-01-31", nil)
	w := httptest.NewRecorder()
	h.VehicleCount(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(42), resp.Data)
}

func TestDashboardCountRequiresRange(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{}, zap.NewNop())

	r := httptest.NewRequest("GET", "/api/dashboard/vehicles/count", nil)
	w := httptest.NewRecorder()
	h.VehicleCount(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardCountRejectsBadDate(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{}, zap.NewNop())

	r := httptest.NewRequest("GET", "/api/dashboard/vehicles/count?startDate=January&endDate=2025-01-31", nil)
	w := httptest.NewRecorder()
	h.VehicleCount(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardRunLogs(t *testing.T) {
	svc := &mockDashboardService{
		logs: []*models.RunLog{
			{ID: 1, Type: models.RunTypeScheduled, TotalData: 5},
			{ID: 2, Type: models.RunTypeManual, TotalData: 1},
		},
	}
	h := NewDashboardHandler(svc, zap.NewNop())

	r := httptest.NewRequest("GET", "/api/dashboard/run-logs?startDate=2025-01-01&endDate=2025-01-31", nil)
	w := httptest.NewRecorder()
	h.RunLogs(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
}
