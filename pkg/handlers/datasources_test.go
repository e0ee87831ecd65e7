package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/models"
)

func TestDataSourceList(t *testing.T) {
	repo := &mockDataSourceRepo{
		sources: []*models.DataSource{
			{ID: 1, MarketplaceName: "OLX", Address: "https://olx.example.com", Status: true},
			{ID: 2, MarketplaceName: "Mobil123", Address: "https://mobil123.example.com", Status: false},
		},
	}
	h := NewDataSourceHandler(repo, zap.NewNop())

	r := httptest.NewRequest("GET", "/api/data-sources", nil)
	w := httptest.NewRecorder()
	h.List(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
}

func TestDataSourceCreate(t *testing.T) {
	repo := &mockDataSourceRepo{}
	h := NewDataSourceHandler(repo, zap.NewNop())

	body := `{"marketplace_name":"OLX","address":"https://olx.example.com","status":true}`
	r := httptest.NewRequest("POST", "/api/data-sources", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.sources, 1)
	assert.Equal(t, "https://olx.example.com", repo.sources[0].Address)
}

func TestDataSourceCreateRequiresAddress(t *testing.T) {
	h := NewDataSourceHandler(&mockDataSourceRepo{}, zap.NewNop())

	r := httptest.NewRequest("POST", "/api/data-sources", strings.NewReader(`{"marketplace_name":"OLX"}`))
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDataSourceUpdateNotFound(t *testing.T) {
	h := NewDataSourceHandler(&mockDataSourceRepo{}, zap.NewNop())

	r := httptest.NewRequest("PUT", "/api/data-sources/7", strings.NewReader(`{"address":"https://x.example.com"}`))
	r.SetPathValue("id", "7")
	w := httptest.NewRecorder()
	h.Update(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDataSourceDelete(t *testing.T) {
	repo := &mockDataSourceRepo{
		sources: []*models.DataSource{{ID: 1, Address: "https://olx.example.com"}},
	}
	h := NewDataSourceHandler(repo, zap.NewNop())

	r := httptest.NewRequest("DELETE", "/api/data-sources/1", nil)
	r.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.Delete(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.sources)
}
