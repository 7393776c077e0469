package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/marcenapp/internal/cache"
	"github.com/piwi3910/marcenapp/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const cabinetList = `{
  "name": "cabinet",
  "parts": [
    {"id": "side", "name": "Side", "width": 600, "height": 1800, "quantity": 2, "material": "white"},
    {"id": "back", "name": "Back", "width": 900, "height": 1700, "quantity": 1, "material": "backing"}
  ]
}`

func newTestServer(t *testing.T, c *cache.Cache) *Server {
	t.Helper()
	return New(model.DefaultAppConfig(), nil, c)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestNesting_OK(t *testing.T) {
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/nesting", cabinetList)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decode[model.NestingResult](t, w)
	require.Len(t, result.Sheets, 2)
	assert.Equal(t, "white", result.Sheets[0].Material)
	assert.Equal(t, "backing", result.Sheets[1].Material)
	assert.Equal(t, 3, result.ItemCount())
	assert.Greater(t, result.Efficiency, 0.0)
}

func TestNesting_SchemaViolation(t *testing.T) {
	body := `{"parts":[{"width":0,"height":100,"quantity":1,"material":"white"}]}`
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/nesting", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "part list failed schema validation", resp["error"])
	assert.NotEmpty(t, resp["fields"])
}

func TestNesting_MarginTooLarge(t *testing.T) {
	body := `{"parts":[{"width":10,"height":10,"quantity":1,"material":"white"}],
	          "stock":{"width":100,"height":100},"margin":50}`
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/nesting", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "validation failed", resp["error"])
	fields, ok := resp["fields"].([]any)
	require.True(t, ok)
	assert.Len(t, fields, 2)
}

func TestNesting_PartTooLarge(t *testing.T) {
	body := `{"parts":[{"id":"slab","name":"Slab","width":3000,"height":500,"quantity":1,"material":"white"}]}`
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/nesting", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, 2710.0, resp["usable_width"])
	assert.Equal(t, 1810.0, resp["usable_height"])
	parts, ok := resp["parts"].([]any)
	require.True(t, ok)
	require.Len(t, parts, 1)
	assert.Equal(t, "slab", parts[0].(map[string]any)["part_id"])
}

func TestNesting_UsesCache(t *testing.T) {
	c, err := cache.Open("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	s := newTestServer(t, c)

	first := do(t, s, http.MethodPost, "/api/nesting", cabinetList)
	require.Equal(t, http.StatusOK, first.Code)
	second := do(t, s, http.MethodPost, "/api/nesting", cabinetList)
	require.Equal(t, http.StatusOK, second.Code)

	assert.JSONEq(t, first.Body.String(), second.Body.String())
	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNesting_PartsWithoutIDsAreCachedOnce(t *testing.T) {
	c, err := cache.Open("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	s := newTestServer(t, c)
	body := `{"parts":[
		{"width":600,"height":400,"quantity":2,"material":"white"},
		{"width":700,"height":500,"quantity":1,"material":"wood"}
	]}`

	first := do(t, s, http.MethodPost, "/api/nesting", body)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	second := do(t, s, http.MethodPost, "/api/nesting", body)
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	assert.JSONEq(t, first.Body.String(), second.Body.String())
	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNesting_BodyTooLarge(t *testing.T) {
	body := `{"parts":[]` + strings.Repeat(" ", maxBodyBytes) + `}`
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/nesting", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func TestNesting_KerfOverflowingFloat64(t *testing.T) {
	body := `{"parts":[{"width":10,"height":10,"quantity":1,"material":"white"}],"kerf":1e400}`
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/nesting", body)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestCompare(t *testing.T) {
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/nesting/compare", cabinetList)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Scenarios []struct {
			Scenario   struct{ Name string } `json:"scenario"`
			SheetsUsed int                   `json:"sheets_used"`
		} `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Scenarios)
	assert.Equal(t, "Current Settings", resp.Scenarios[0].Scenario.Name)
	assert.Equal(t, 2, resp.Scenarios[0].SheetsUsed)
}

func TestEstimate(t *testing.T) {
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/estimate", cabinetList)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[map[string]json.RawMessage](t, w)
	assert.Contains(t, resp, "purchase")
	assert.Contains(t, resp, "edge_banding")
	assert.Contains(t, resp, "edge_per_part")
}

func TestExport_Formats(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		filename    string
		prefix      string
	}{
		{"pdf", "application/pdf", "cabinet.pdf", "%PDF-"},
		{"labels", "application/pdf", "cabinet-labels.pdf", "%PDF-"},
		{"csv", "text/csv", "cabinet.csv", "Sheet,"},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "cabinet.xlsx", "PK"},
		{"dxf", "application/dxf", "cabinet.dxf", ""},
		{"html", "text/html; charset=utf-8", "cabinet.html", ""},
		{"gcode", "text/plain; charset=utf-8", "cabinet.nc", ""},
	}
	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/nesting/export/"+tt.format, cabinetList)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="`+tt.filename+`"`)
			assert.NotZero(t, w.Body.Len())
			if tt.prefix != "" {
				assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte(tt.prefix)), "body starts with %q", tt.prefix)
			}
		})
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/nesting/export/svg", cabinetList)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unknown export format")
}

func TestExport_EmptyPartList(t *testing.T) {
	w := do(t, newTestServer(t, nil), http.MethodPost, "/api/nesting/export/pdf", `{"parts":[]}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessions_EditUndoRedo(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/api/sessions", cabinetList)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[sessionView](t, w)
	require.NotEmpty(t, created.ID)
	assert.Len(t, created.State.Parts, 2)
	assert.False(t, created.CanUndo)
	base := "/api/sessions/" + created.ID

	w = do(t, s, http.MethodPost, base+"/parts", `{"name":"Shelf","width":560,"height":300,"quantity":4,"material":"white"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode[sessionView](t, w)
	require.Len(t, added.State.Parts, 3)
	assert.True(t, added.CanUndo)
	shelfID := added.State.Parts[2].ID
	assert.NotEmpty(t, shelfID)

	w = do(t, s, http.MethodPut, base+"/parts/"+shelfID, `{"name":"Shelf","width":560,"height":300,"quantity":6,"material":"white"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 6, decode[sessionView](t, w).State.Parts[2].Quantity)

	w = do(t, s, http.MethodPost, base+"/undo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, decode[sessionView](t, w).State.Parts[2].Quantity)

	w = do(t, s, http.MethodPost, base+"/redo", "")
	require.Equal(t, http.StatusOK, w.Code)
	redone := decode[sessionView](t, w)
	assert.Equal(t, 6, redone.State.Parts[2].Quantity)
	assert.False(t, redone.CanRedo)

	w = do(t, s, http.MethodGet, base+"/nesting", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 9, decode[model.NestingResult](t, w).ItemCount())

	w = do(t, s, http.MethodDelete, base+"/parts/"+shelfID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[sessionView](t, w).State.Parts, 2)

	w = do(t, s, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessions_ReplacePartsAndProject(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/api/sessions", "")
	base := "/api/sessions/" + decode[sessionView](t, w).ID

	w = do(t, s, http.MethodPut, base+"/parts", cabinetList)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replaced := decode[sessionView](t, w)
	assert.Len(t, replaced.State.Parts, 2)
	assert.Equal(t, "Import 2 parts", replaced.State.Label)
	assert.Len(t, replaced.History, 1)

	w = do(t, s, http.MethodGet, base+"/project", "")
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[model.Project](t, w)
	assert.Len(t, p.Parts, 2)
	assert.Equal(t, "side", p.Parts[0].ID)
}

func TestSessions_EmptyBodyUsesConfigDefaults(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[sessionView](t, w)
	assert.Empty(t, created.State.Parts)
	assert.Equal(t, model.DefaultAppConfig().NestingSettings().Kerf, created.State.Settings.Kerf)
}

func TestSessions_MaxSessionsEvictsOldest(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.MaxSessions = 1
	s := New(cfg, nil, nil)

	w := do(t, s, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode[sessionView](t, w).ID
	w = do(t, s, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[sessionView](t, w).ID

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/sessions/"+first, "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/sessions/"+second, "").Code)
}

func TestSessions_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/api/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/api/sessions", "")
	id := decode[sessionView](t, w).ID
	base := "/api/sessions/" + id

	w = do(t, s, http.MethodPost, base+"/undo", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, s, http.MethodDelete, base+"/parts/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, base+"/parts", `{"name":"Bad","width":-1,"height":10,"quantity":1,"material":"white"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"width"`)

	w = do(t, s, http.MethodPost, base+"/parts", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessions_SettingsChangeInvalidatesNesting(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/api/sessions", cabinetList)
	base := "/api/sessions/" + decode[sessionView](t, w).ID

	w = do(t, s, http.MethodGet, base+"/nesting", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[model.NestingResult](t, w).Sheets, 2)

	settings := model.DefaultNestingSettings()
	settings.MaterialOrder = []string{"backing", "white"}
	body, err := json.Marshal(settings)
	require.NoError(t, err)
	w = do(t, s, http.MethodPut, base+"/settings", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decode[sessionView](t, w).State.Result)

	w = do(t, s, http.MethodGet, base+"/nesting", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "backing", decode[model.NestingResult](t, w).Sheets[0].Material)
}

func TestHTTPStatus_BodyTooLarge(t *testing.T) {
	err := fmt.Errorf("reading body: %w", &http.MaxBytesError{Limit: maxBodyBytes})
	assert.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatus(err))
}

func TestHTTPStatus_Default(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(assert.AnError))
}
