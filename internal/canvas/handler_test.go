package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"toddlerdoc-backend/internal/documents"
	"toddlerdoc-backend/internal/llm"
	"toddlerdoc-backend/internal/scribbles"
	"toddlerdoc-backend/internal/shared/storage/object/local"
)

// garbageClient makes path generation take the procedural fallback and
// caption generation take the fallback string.
type garbageClient struct{}

func (garbageClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	if req.MaxTokens == 50 {
		// Caption request: no content, so the service falls back.
		return "", nil
	}
	return "scribble scribble", nil
}

type testEnv struct {
	router *gin.Engine
	docs   *documents.Service
	repo   *documents.MemoryRepo
	mgr    *Manager
}

func newTestEnv(t *testing.T, saveEnabled bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := documents.NewMemoryRepo()
	store := local.New(t.TempDir(), "http://localhost:8080")
	docs := &documents.Service{Store: store, Repo: repo}
	gen := scribbles.NewService(garbageClient{})
	mgr := NewManager()

	r := gin.New()
	NewHandler(mgr, docs, gen, store, saveEnabled).RegisterRoutes(r.Group("/api/v1"))
	return &testEnv{router: r, docs: docs, repo: repo, mgr: mgr}
}

func seedImageDocument(t *testing.T, env *testEnv) documents.Document {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if _, err := env.docs.Store.SaveWithKey(context.Background(), "u/drawing.png", "image/png", &buf); err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}

	doc, err := env.docs.Create(context.Background(), "user-1", documents.CreateInput{
		OriginalFileKey: "u/drawing.png",
		FileName:        "drawing.png",
		FileType:        "image/png",
		ScribbleStyle:   "marker",
		Intensity:       7,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return doc
}

func doJSON(t *testing.T, env *testEnv, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestOpenSessionForImageDocument(t *testing.T) {
	env := newTestEnv(t, false)
	doc := seedImageDocument(t, env)

	w := doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Style        string `json:"style"`
		CanvasWidth  int    `json:"canvasWidth"`
		CanvasHeight int    `json:"canvasHeight"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Style != "marker" || resp.CanvasWidth != CanvasWidth || resp.CanvasHeight != CanvasHeight {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestOpenSessionUnknownDocument(t *testing.T) {
	env := newTestEnv(t, false)

	w := doJSON(t, env, http.MethodPost, "/api/v1/canvas/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAddScribblesThenRenderImage(t *testing.T) {
	env := newTestEnv(t, false)
	doc := seedImageDocument(t, env)

	if w := doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("open status = %d", w.Code)
	}
	session, ok := env.mgr.Get(doc.ID)
	if !ok {
		t.Fatalf("session not registered")
	}
	session.SetStagger(time.Millisecond)

	w := doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID+"/scribbles", map[string]any{
		"paths": []map[string]string{
			{"path": "M100,100 L300,300", "color": "#FF1744"},
			{"path": "M50,400 Q200,350 400,420"},
		},
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("add status = %d, body = %s", w.Code, w.Body.String())
	}
	waitForStrokes(t, session, 2)

	imgResp := doJSON(t, env, http.MethodGet, "/api/v1/canvas/"+doc.ID+"/image", nil)
	if imgResp.Code != http.StatusOK {
		t.Fatalf("image status = %d", imgResp.Code)
	}
	if ct := imgResp.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	decoded, err := png.Decode(bytes.NewReader(imgResp.Body.Bytes()))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if decoded.Bounds().Dx() != CanvasWidth {
		t.Fatalf("width = %d", decoded.Bounds().Dx())
	}
}

func TestAddScribblesGeneratesWhenNoPathsSupplied(t *testing.T) {
	env := newTestEnv(t, false)
	doc := seedImageDocument(t, env)
	doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID, nil)

	session, _ := env.mgr.Get(doc.ID)
	session.SetStagger(time.Millisecond)

	w := doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID+"/scribbles", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Queued       int  `json:"queued"`
		FallbackUsed bool `json:"fallbackUsed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Queued != 2 || !resp.FallbackUsed {
		t.Fatalf("resp = %+v, want 2 queued fallback strokes", resp)
	}
	waitForStrokes(t, session, 2)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if session.Caption() == scribbles.FallbackCaption {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("caption = %q, want fallback caption", session.Caption())
}

func TestAddScribblesRejectsInvalidPath(t *testing.T) {
	env := newTestEnv(t, false)
	doc := seedImageDocument(t, env)
	doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID, nil)

	w := doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID+"/scribbles", map[string]any{
		"paths": []map[string]string{{"path": "not a path"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestClearScribblesEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	doc := seedImageDocument(t, env)
	doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID, nil)

	session, _ := env.mgr.Get(doc.ID)
	session.SetStagger(time.Millisecond)
	session.SetCaption("I sorry I drew on it")
	doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID+"/scribbles", map[string]any{
		"paths": []map[string]string{{"path": "M1,1 L2,2"}},
	})
	waitForStrokes(t, session, 1)

	w := doJSON(t, env, http.MethodDelete, "/api/v1/canvas/"+doc.ID+"/scribbles", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear status = %d", w.Code)
	}
	if got := len(session.Strokes()); got != 0 {
		t.Fatalf("strokes after clear = %d", got)
	}
	if got := session.Caption(); got != "" {
		t.Fatalf("caption after clear = %q", got)
	}
}

func TestSaveProcessedDisabledByDefault(t *testing.T) {
	env := newTestEnv(t, false)
	doc := seedImageDocument(t, env)
	doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID, nil)

	w := doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID+"/save", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unregistered route", w.Code)
	}
}

func TestSaveProcessedAttachesFile(t *testing.T) {
	env := newTestEnv(t, true)
	doc := seedImageDocument(t, env)
	doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID, nil)

	w := doJSON(t, env, http.MethodPost, "/api/v1/canvas/"+doc.ID+"/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		ProcessedFileKey string `json:"processedFileKey"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ProcessedFileKey == "" {
		t.Fatalf("expected processedFileKey")
	}

	stored, err := env.repo.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ProcessedFileKey != resp.ProcessedFileKey {
		t.Fatalf("repo key = %q, response key = %q", stored.ProcessedFileKey, resp.ProcessedFileKey)
	}

	rc, err := env.docs.Store.Open(context.Background(), resp.ProcessedFileKey)
	if err != nil {
		t.Fatalf("Open processed: %v", err)
	}
	defer rc.Close()
	if _, err := png.Decode(rc); err != nil {
		t.Fatalf("processed file is not a PNG: %v", err)
	}
}
