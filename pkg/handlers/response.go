package handlers

import (
	"encoding/json"
	"net/http"
)

// ApiResponse is the envelope every endpoint answers with.
type ApiResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries pagination details for list endpoints.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewMeta builds pagination metadata from a total row count.
func NewMeta(page, perPage, total int) *Meta {
	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return &Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// OKResponse writes a success envelope.
func OKResponse(w http.ResponseWriter, data interface{}, meta *Meta) error {
	return WriteJSON(w, http.StatusOK, ApiResponse{
		Data:    data,
		Error:   false,
		Message: "OK - The request was successful",
		Meta:    meta,
	})
}

// ErrorResponse writes a JSON error envelope and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, ApiResponse{
		Error:   true,
		Message: message,
	})
}
