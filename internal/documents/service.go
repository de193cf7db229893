package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"toddlerdoc-backend/internal/shared/storage/object"
	"toddlerdoc-backend/internal/shared/telemetry"
)

const (
	listLimit = 20
	urlTTL    = 15 * time.Minute
)

// CreateInput captures the fields a client sends when registering an upload.
type CreateInput struct {
	OriginalFileKey string
	FileName        string
	FileType        string
	ScribbleStyle   string
	Intensity       float64
	Caption         string
}

// DocumentWithURLs is a document plus resolved storage URLs. A URL is empty
// when the underlying object is missing.
type DocumentWithURLs struct {
	Document
	OriginalURL  string
	ProcessedURL string
}

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
}

// Create records a document for an already-uploaded file. The file key must
// be present; everything else is stored as sent. PDF uploads get their page
// count read from storage, and a failure there falls back to one page.
func (s *Service) Create(ctx context.Context, userId string, input CreateInput) (Document, error) {
	if strings.TrimSpace(input.OriginalFileKey) == "" {
		return Document{}, ErrInvalidInput
	}
	if strings.TrimSpace(input.FileName) == "" {
		return Document{}, ErrInvalidInput
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          userId,
		OriginalFileKey: input.OriginalFileKey,
		FileName:        input.FileName,
		FileType:        input.FileType,
		ScribbleStyle:   input.ScribbleStyle,
		Intensity:       input.Intensity,
		Caption:         input.Caption,
		PageCount:       1,
		CreatedAt:       time.Now().UTC(),
	}

	if input.FileType == "application/pdf" {
		if pages, err := s.countPDFPages(ctx, input.OriginalFileKey); err != nil {
			telemetry.Warn("documents.page_count_failed", map[string]any{
				"file_key": input.OriginalFileKey,
				"error":    err.Error(),
			})
		} else {
			doc.PageCount = pages
		}
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Get returns a document by ID with resolved URLs.
func (s *Service) Get(ctx context.Context, documentID string) (DocumentWithURLs, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return DocumentWithURLs{}, err
	}
	return s.resolveURLs(ctx, doc)
}

// ListMine returns the caller's 20 newest documents with resolved URLs.
// Anonymous callers get an empty list.
func (s *Service) ListMine(ctx context.Context, userId string) ([]DocumentWithURLs, error) {
	if userId == "" {
		return []DocumentWithURLs{}, nil
	}

	docs, err := s.Repo.ListByUser(ctx, userId, listLimit)
	if err != nil {
		return nil, err
	}

	out := make([]DocumentWithURLs, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			resolved, err := s.resolveURLs(gctx, doc)
			if err != nil {
				return err
			}
			out[i] = resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AttachProcessed stores the processed file key on a document. Repeated
// calls with the same key are harmless.
func (s *Service) AttachProcessed(ctx context.Context, documentID, processedFileKey string) error {
	if strings.TrimSpace(processedFileKey) == "" {
		return ErrInvalidInput
	}
	return s.Repo.AttachProcessed(ctx, documentID, processedFileKey)
}

func (s *Service) resolveURLs(ctx context.Context, doc Document) (DocumentWithURLs, error) {
	resolved := DocumentWithURLs{Document: doc}

	url, err := s.Store.ResolveURL(ctx, doc.OriginalFileKey, urlTTL)
	switch {
	case err == nil:
		resolved.OriginalURL = url
	case errors.Is(err, object.ErrObjectNotFound):
		// Missing object resolves to no URL rather than an error.
	default:
		return DocumentWithURLs{}, err
	}

	if doc.ProcessedFileKey != "" {
		url, err := s.Store.ResolveURL(ctx, doc.ProcessedFileKey, urlTTL)
		switch {
		case err == nil:
			resolved.ProcessedURL = url
		case errors.Is(err, object.ErrObjectNotFound):
		default:
			return DocumentWithURLs{}, err
		}
	}
	return resolved, nil
}

func (s *Service) countPDFPages(ctx context.Context, fileKey string) (int, error) {
	rc, err := s.Store.Open(ctx, fileKey)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return 0, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	pages := reader.NumPage()
	if pages < 1 {
		pages = 1
	}
	return pages, nil
}
