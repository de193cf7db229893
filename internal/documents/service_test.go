package documents

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"toddlerdoc-backend/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	store := local.New(t.TempDir(), "http://localhost:8080")
	return &Service{Store: store, Repo: repo}, repo
}

func seedObject(t *testing.T, svc *Service, key, body string) {
	t.Helper()
	if _, err := svc.Store.SaveWithKey(context.Background(), key, "application/octet-stream", strings.NewReader(body)); err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
}

func TestCreateAndGetResolvesOriginalURL(t *testing.T) {
	svc, _ := newTestService(t)
	seedObject(t, svc, "abc/drawing.png", "png-bytes")

	doc, err := svc.Create(context.Background(), "user-1", CreateInput{
		OriginalFileKey: "abc/drawing.png",
		FileName:        "drawing.png",
		FileType:        "image/png",
		ScribbleStyle:   "marker",
		Intensity:       7,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.PageCount != 1 {
		t.Fatalf("PageCount = %d, want 1 for images", doc.PageCount)
	}

	got, err := svc.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OriginalURL == "" {
		t.Fatalf("expected resolved originalUrl")
	}
	if got.ProcessedURL != "" {
		t.Fatalf("expected no processedUrl before processing, got %q", got.ProcessedURL)
	}
}

func TestCreateAcceptsUnvalidatedMetadata(t *testing.T) {
	// File type, style, and intensity are recorded as sent; only the
	// presign endpoint enforces the upload allow-list.
	svc, _ := newTestService(t)

	doc, err := svc.Create(context.Background(), "", CreateInput{
		OriginalFileKey: "abc/odd.bin",
		FileName:        "odd.bin",
		FileType:        "application/x-unknown",
		ScribbleStyle:   "glitter",
		Intensity:       99,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ScribbleStyle != "glitter" || doc.Intensity != 99 {
		t.Fatalf("metadata was rewritten: %+v", doc)
	}
}

func TestCreateRequiresFileKeyAndName(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{FileName: "x.png"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing key, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-1", CreateInput{OriginalFileKey: "k"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing name, got %v", err)
	}
}

func TestGetMissingObjectOmitsURL(t *testing.T) {
	svc, repo := newTestService(t)

	doc := Document{
		ID:              "doc-1",
		UserID:          "user-1",
		OriginalFileKey: "gone/missing.png",
		FileName:        "missing.png",
		CreatedAt:       time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("repo.Create: %v", err)
	}

	got, err := svc.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OriginalURL != "" {
		t.Fatalf("expected empty originalUrl for missing object, got %q", got.OriginalURL)
	}
}

func TestListMineAnonymousIsEmpty(t *testing.T) {
	svc, repo := newTestService(t)

	// Anonymous documents exist but must never show up in a listing.
	if err := repo.Create(context.Background(), Document{ID: "anon-1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("repo.Create: %v", err)
	}

	docs, err := svc.ListMine(context.Background(), "")
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("expected empty list, got %v", docs)
	}
}

func TestListMineReturnsNewestTwenty(t *testing.T) {
	svc, repo := newTestService(t)
	base := time.Now().UTC()

	for i := 0; i < 25; i++ {
		key := fmt.Sprintf("u/file-%02d.png", i)
		seedObject(t, svc, key, "data")
		doc := Document{
			ID:              fmt.Sprintf("doc-%02d", i),
			UserID:          "user-1",
			OriginalFileKey: key,
			FileName:        fmt.Sprintf("file-%02d.png", i),
			CreatedAt:       base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(context.Background(), doc); err != nil {
			t.Fatalf("repo.Create: %v", err)
		}
	}

	docs, err := svc.ListMine(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(docs) != 20 {
		t.Fatalf("len = %d, want 20", len(docs))
	}
	if docs[0].ID != "doc-24" {
		t.Fatalf("first = %s, want newest doc-24", docs[0].ID)
	}
	for _, doc := range docs {
		if doc.OriginalURL == "" {
			t.Fatalf("document %s missing resolved URL", doc.ID)
		}
	}
}

func TestAttachProcessedIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)

	if err := repo.Create(context.Background(), Document{ID: "doc-1", UserID: "user-1", OriginalFileKey: "k", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("repo.Create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.AttachProcessed(context.Background(), "doc-1", "u/processed.png"); err != nil {
			t.Fatalf("AttachProcessed call %d: %v", i+1, err)
		}
	}

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.ProcessedFileKey != "u/processed.png" {
		t.Fatalf("ProcessedFileKey = %q", doc.ProcessedFileKey)
	}
}

func TestAttachProcessedUnknownDocument(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.AttachProcessed(context.Background(), "nope", "key"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
