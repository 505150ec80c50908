package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplemetrics/housing-dashboard/internal/business/dashboard"
	"github.com/maplemetrics/housing-dashboard/internal/dataset"
	"github.com/maplemetrics/housing-dashboard/pkg/model"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	ds := dataset.New([]model.Listing{
		{City: "Toronto", Province: "Ontario", Price: 500000, NumberBeds: 3, NumberBaths: 2, Latitude: 43.65, Longitude: -79.38, HouseholdIncome: 90000},
		{City: "Toronto", Province: "Ontario", Price: 1200000, NumberBeds: 4, NumberBaths: 3, Latitude: 43.65, Longitude: -79.35, HouseholdIncome: 110000},
		{City: "Halifax", Province: "Nova Scotia", Price: 300000, NumberBeds: 2, NumberBaths: 1, Latitude: 44.65, Longitude: -63.58, HouseholdIncome: 70000},
	})
	sessions := dashboard.NewManager(ds, 100000, nil)
	return NewRouter(ds, sessions, "*")
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		SessionID string         `json:"sessionId"`
		Snapshot  model.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.SessionID)
	return body.SessionID
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetMeta(t *testing.T) {
	router := newTestRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/meta", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Listings         int                 `json:"listings"`
		Provinces        []string            `json:"provinces"`
		CitiesByProvince map[string][]string `json:"citiesByProvince"`
		MinPrice         float64             `json:"minPrice"`
		MaxPrice         float64             `json:"maxPrice"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Listings)
	assert.Equal(t, []string{"Nova Scotia", "Ontario"}, body.Provinces)
	assert.Equal(t, []string{"Toronto"}, body.CitiesByProvince["Ontario"])
	assert.Equal(t, 300000.0, body.MinPrice)
	assert.Equal(t, 1200000.0, body.MaxPrice)
}

func TestUpdateConstraintsRoundTrip(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router)

	payload := map[string]any{
		"provinces": []string{"Ontario"},
		"cities":    []string{"Toronto"},
		"minPrice":  200000,
		"maxPrice":  1000000,
		"minBeds":   3,
		"minBaths":  2,
	}
	buf, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+id+"/constraints", bytes.NewReader(buf))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.MatchCount)
	require.Len(t, snap.Summary, 1)
	assert.Equal(t, "Toronto", snap.Summary[0].City)
	assert.Equal(t, 500000.0, snap.Summary[0].AvgPrice)

	// Partial update: only the comparison changes, filter state persists.
	buf, _ = json.Marshal(map[string]any{"compareCities": []string{"Toronto", "Halifax"}})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/sessions/"+id+"/constraints", bytes.NewReader(buf))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.MatchCount)
	require.NotNil(t, snap.Comparison)
	assert.Equal(t, []float64{300000}, snap.Comparison.PricesB)
}

func TestUpdateConstraintsBadRequests(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+id+"/constraints", strings.NewReader("{not json"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/sessions/unknown/constraints", strings.NewReader("{}"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSnapshotUnknownSession(t *testing.T) {
	router := newTestRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/unknown/snapshot", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportListings(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router)

	// Narrow to Halifax so the export reflects the filter.
	buf, _ := json.Marshal(map[string]any{
		"provinces": []string{"Nova Scotia"},
		"cities":    []string{"Halifax"},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+id+"/constraints", bytes.NewReader(buf))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/listings/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "City,Province,Price"))
	assert.True(t, strings.HasPrefix(lines[1], "Halifax,Nova Scotia,300000.00"))
}

func TestCloseSession(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/snapshot", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
