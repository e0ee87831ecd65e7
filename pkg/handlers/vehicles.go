package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/auth"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
	"github.com/lelangtech/pricewatch-engine/pkg/services"
)

// VehicleHandler handles vehicle listing, manual prediction, and price
// write-back requests.
type VehicleHandler struct {
	vehicles   repositories.VehicleRepository
	prediction services.PredictionService
	logger     *zap.Logger
}

func NewVehicleHandler(vehicles repositories.VehicleRepository, prediction services.PredictionService, logger *zap.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicles:   vehicles,
		prediction: prediction,
		logger:     logger,
	}
}

// RegisterRoutes registers the vehicle handler's routes on the given mux.
func (h *VehicleHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/vehicles", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/vehicles/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("POST /api/vehicles/predict", authMiddleware.RequireAuth(h.Predict))
	mux.HandleFunc("PUT /api/vehicles/{id}", authMiddleware.RequireAuth(h.Update))
}

// List handles GET /api/vehicles
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := repositories.VehicleListOptions{
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
		SortBy: r.URL.Query().Get("sortBy"),
		Order:  r.URL.Query().Get("order"),
		Search: r.URL.Query().Get("search"),
	}

	vehicles, total, err := h.vehicles.List(r.Context(), opts)
	if err != nil {
		h.logger.Error("Failed to list vehicles", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to list vehicles")
		return
	}

	if err := OKResponse(w, vehicles, NewMeta(opts.Page, opts.Limit, total)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/vehicles/{id}
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	vehicle, err := h.vehicles.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		h.logger.Error("Failed to get vehicle", zap.String("id", id.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to get vehicle")
		return
	}

	if err := OKResponse(w, vehicle, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Predict handles POST /api/vehicles/predict
func (h *VehicleHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req services.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.prediction.PredictSingle(r.Context(), req)
	if err != nil {
		var parseErr *services.EstimateParseError
		if errors.As(err, &parseErr) {
			h.logger.Warn("Prediction response unparseable", zap.Error(err))
			_ = ErrorResponse(w, http.StatusBadGateway, "AI response could not be parsed")
			return
		}
		h.logger.Error("Prediction failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Prediction failed")
		return
	}

	if err := OKResponse(w, result, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/vehicles/{id}
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	var req services.VehicleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Attribute the manual run to the authenticated user.
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		req.UserID = &userID
	}

	if err := h.prediction.UpdateVehicle(r.Context(), id, req); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		h.logger.Error("Failed to update vehicle", zap.String("id", id.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to update vehicle")
		return
	}

	if err := OKResponse(w, nil, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// queryInt parses an integer query parameter, falling back to def for
// missing or invalid values.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
