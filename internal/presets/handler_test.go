package presets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	if err := Seed(context.Background(), repo); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group("/api/v1"))
	return r, repo
}

func TestListPresetsFiltersByStyle(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presets?style=crayon", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp []presetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) == 0 {
		t.Fatalf("expected seeded crayon presets")
	}
	for _, p := range resp {
		if p.Style != "crayon" {
			t.Fatalf("unexpected style %q", p.Style)
		}
		if len(p.Paths) == 0 || len(p.Colors) == 0 {
			t.Fatalf("preset %q missing paths or colors", p.Name)
		}
	}
}

func TestListPresetsRejectsUnknownStyle(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presets?style=glitter", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGetPresetByID(t *testing.T) {
	r, repo := newTestRouter(t)

	list, err := repo.List(context.Background(), "marker")
	if err != nil || len(list) == 0 {
		t.Fatalf("List: %v (%d presets)", err, len(list))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presets/"+list[0].ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/presets/does-not-exist", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d for unknown preset", w.Code)
	}
}
