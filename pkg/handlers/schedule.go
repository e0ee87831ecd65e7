package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/auth"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/services"
)

// ScheduleHandler reads and edits the refresh schedule. The scheduler picks
// up edits on its next poll; no restart is needed.
type ScheduleHandler struct {
	schedule services.ScheduleConfigService
	logger   *zap.Logger
}

func NewScheduleHandler(schedule services.ScheduleConfigService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedule: schedule,
		logger:   logger,
	}
}

// RegisterRoutes registers the schedule handler's routes on the given mux.
func (h *ScheduleHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/schedule", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/schedule/{id}", authMiddleware.RequireAdmin(h.Update))
}

// Get handles GET /api/schedule
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.schedule.Current(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrScheduleNotConfigured) {
			_ = ErrorResponse(w, http.StatusNotFound, "No schedule configured")
			return
		}
		h.logger.Error("Failed to read schedule", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to read schedule")
		return
	}

	if err := OKResponse(w, schedule, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type updateScheduleRequest struct {
	JobSchedule string    `json:"job_schedule"`
	Time        time.Time `json:"time"`
	MaxRecord   int       `json:"max_record"`
	AIIQR       float64   `json:"ai_iqr"`
	AITemp      float64   `json:"ai_temp"`
}

// Update handles PUT /api/schedule/{id}
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid schedule ID")
		return
	}

	var req updateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Time.IsZero() {
		_ = ErrorResponse(w, http.StatusBadRequest, "Schedule time is required")
		return
	}
	if req.MaxRecord < 1 {
		_ = ErrorResponse(w, http.StatusBadRequest, "max_record must be at least 1")
		return
	}

	schedule := &models.JobSchedule{
		ID:          id,
		JobSchedule: req.JobSchedule,
		Time:        req.Time,
		MaxRecord:   req.MaxRecord,
		AIIQR:       req.AIIQR,
		AITemp:      req.AITemp,
	}

	if err := h.schedule.Update(r.Context(), schedule); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Schedule not found")
			return
		}
		h.logger.Error("Failed to update schedule", zap.Int("id", id), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to update schedule")
		return
	}

	if err := OKResponse(w, schedule, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
