package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/auth"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
)

// DataSourceHandler manages the marketplace URLs cited in estimation
// prompts.
type DataSourceHandler struct {
	sources repositories.DataSourceRepository
	logger  *zap.Logger
}

func NewDataSourceHandler(sources repositories.DataSourceRepository, logger *zap.Logger) *DataSourceHandler {
	return &DataSourceHandler{
		sources: sources,
		logger:  logger,
	}
}

// RegisterRoutes registers the data source handler's routes on the given mux.
func (h *DataSourceHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/data-sources", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/data-sources", authMiddleware.RequireAdmin(h.Create))
	mux.HandleFunc("PUT /api/data-sources/{id}", authMiddleware.RequireAdmin(h.Update))
	mux.HandleFunc("DELETE /api/data-sources/{id}", authMiddleware.RequireAdmin(h.Delete))
}

// List handles GET /api/data-sources
func (h *DataSourceHandler) List(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sources.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list data sources", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to list data sources")
		return
	}

	if err := OKResponse(w, sources, &Meta{Total: len(sources)}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type dataSourceRequest struct {
	MarketplaceName string `json:"marketplace_name"`
	Address         string `json:"address"`
	Status          bool   `json:"status"`
}

// Create handles POST /api/data-sources
func (h *DataSourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dataSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Address == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Address is required")
		return
	}

	source := &models.DataSource{
		MarketplaceName: req.MarketplaceName,
		Address:         req.Address,
		Status:          req.Status,
	}
	if err := h.sources.Create(r.Context(), source); err != nil {
		h.logger.Error("Failed to create data source", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to create data source")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{
		Data:    source,
		Message: "Created",
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/data-sources/{id}
func (h *DataSourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid data source ID")
		return
	}

	var req dataSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	source := &models.DataSource{
		ID:              id,
		MarketplaceName: req.MarketplaceName,
		Address:         req.Address,
		Status:          req.Status,
	}
	if err := h.sources.Update(r.Context(), source); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Data source not found")
			return
		}
		h.logger.Error("Failed to update data source", zap.Int("id", id), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to update data source")
		return
	}

	if err := OKResponse(w, source, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/data-sources/{id}
func (h *DataSourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid data source ID")
		return
	}

	if err := h.sources.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Data source not found")
			return
		}
		h.logger.Error("Failed to delete data source", zap.Int("id", id), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to delete data source")
		return
	}

	if err := OKResponse(w, nil, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
