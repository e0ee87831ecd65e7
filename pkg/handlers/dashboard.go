package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/auth"
	"github.com/lelangtech/pricewatch-engine/pkg/services"
)

// DashboardHandler serves monitoring counts and run history.
type DashboardHandler struct {
	dashboard services.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// RegisterRoutes registers the dashboard handler's routes on the given mux.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/dashboard/vehicles/count", authMiddleware.RequireAuth(h.VehicleCount))
	mux.HandleFunc("GET /api/dashboard/vehicles/pending", authMiddleware.RequireAuth(h.PendingCount))
	mux.HandleFunc("GET /api/dashboard/vehicles/processed", authMiddleware.RequireAuth(h.ProcessedCount))
	mux.HandleFunc("GET /api/dashboard/run-logs", authMiddleware.RequireAuth(h.RunLogs))
}

// VehicleCount handles GET /api/dashboard/vehicles/count
func (h *DashboardHandler) VehicleCount(w http.ResponseWriter, r *http.Request) {
	h.serveCount(w, r, h.dashboard.VehicleCount)
}

// PendingCount handles GET /api/dashboard/vehicles/pending
func (h *DashboardHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	h.serveCount(w, r, h.dashboard.PendingCount)
}

// ProcessedCount handles GET /api/dashboard/vehicles/processed
func (h *DashboardHandler) ProcessedCount(w http.ResponseWriter, r *http.Request) {
	h.serveCount(w, r, h.dashboard.ProcessedCount)
}

// RunLogs handles GET /api/dashboard/run-logs
func (h *DashboardHandler) RunLogs(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	logs, err := h.dashboard.RunLogs(r.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to list run logs", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to list run logs")
		return
	}

	if err := OKResponse(w, logs, &Meta{Total: len(logs)}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *DashboardHandler) serveCount(w http.ResponseWriter, r *http.Request, count func(ctx context.Context, start, end time.Time) (int, error)) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	n, err := count(r.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to count vehicles", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to count vehicles")
		return
	}

	if err := OKResponse(w, n, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// dateRange parses startDate/endDate query parameters (YYYY-MM-DD) and
// widens them to whole days.
func dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	startRaw := r.URL.Query().Get("startDate")
	endRaw := r.URL.Query().Get("endDate")
	if startRaw == "" || endRaw == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "startDate and endDate are required")
		return time.Time{}, time.Time{}, false
	}

	start, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid startDate")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid endDate")
		return time.Time{}, time.Time{}, false
	}

	end = end.Add(24*time.Hour - time.Second)
	return start, end, true
}
