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

// DataParameterHandler manages the column-to-label mappings used by search
// screens.
type DataParameterHandler struct {
	params repositories.DataParameterRepository
	logger *zap.Logger
}

func NewDataParameterHandler(params repositories.DataParameterRepository, logger *zap.Logger) *DataParameterHandler {
	return &DataParameterHandler{
		params: params,
		logger: logger,
	}
}

// RegisterRoutes registers the data parameter handler's routes on the given mux.
func (h *DataParameterHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/data-parameters", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/data-parameters", authMiddleware.RequireAdmin(h.Create))
	mux.HandleFunc("PUT /api/data-parameters/{id}", authMiddleware.RequireAdmin(h.Update))
	mux.HandleFunc("DELETE /api/data-parameters/{id}", authMiddleware.RequireAdmin(h.Delete))
}

// List handles GET /api/data-parameters
func (h *DataParameterHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := h.params.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list data parameters", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to list data parameters")
		return
	}

	if err := OKResponse(w, params, &Meta{Total: len(params)}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type dataParameterRequest struct {
	Parameter   string `json:"parameter"`
	TableColumn string `json:"table_column"`
	Status      bool   `json:"status"`
}

// Create handles POST /api/data-parameters
func (h *DataParameterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dataParameterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Parameter == "" || req.TableColumn == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Parameter and table_column are required")
		return
	}

	param := &models.DataParameter{
		Parameter:   req.Parameter,
		TableColumn: req.TableColumn,
		Status:      req.Status,
	}
	if err := h.params.Create(r.Context(), param); err != nil {
		h.logger.Error("Failed to create data parameter", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to create data parameter")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{
		Data:    param,
		Message: "Created",
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/data-parameters/{id}
func (h *DataParameterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid data parameter ID")
		return
	}

	var req dataParameterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	param := &models.DataParameter{
		ID:          id,
		Parameter:   req.Parameter,
		TableColumn: req.TableColumn,
		Status:      req.Status,
	}
	if err := h.params.Update(r.Context(), param); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Data parameter not found")
			return
		}
		h.logger.Error("Failed to update data parameter", zap.Int("id", id), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to update data parameter")
		return
	}

	if err := OKResponse(w, param, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/data-parameters/{id}
func (h *DataParameterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid data parameter ID")
		return
	}

	if err := h.params.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Data parameter not found")
			return
		}
		h.logger.Error("Failed to delete data parameter", zap.Int("id", id), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to delete data parameter")
		return
	}

	if err := OKResponse(w, nil, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
