package canvas

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"toddlerdoc-backend/internal/documents"
	"toddlerdoc-backend/internal/scribbles"
	"toddlerdoc-backend/internal/shared/server/respond"
	"toddlerdoc-backend/internal/shared/storage/object"
	"toddlerdoc-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to canvas sessions.
type Handler struct {
	Manager *Manager
	Docs    *documents.Service
	Gen     *scribbles.Service
	Store   object.ObjectStore
	// SaveEnabled gates the processed-save endpoint.
	SaveEnabled bool
}

// NewHandler constructs a Handler.
func NewHandler(manager *Manager, docs *documents.Service, gen *scribbles.Service, store object.ObjectStore, saveEnabled bool) *Handler {
	return &Handler{Manager: manager, Docs: docs, Gen: gen, Store: store, SaveEnabled: saveEnabled}
}

// RegisterRoutes attaches canvas routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/canvas/:documentId", h.openSession)
	rg.POST("/canvas/:documentId/scribbles", h.addScribbles)
	rg.DELETE("/canvas/:documentId/scribbles", h.clearScribbles)
	rg.GET("/canvas/:documentId/image", h.renderImage)
	if h.SaveEnabled {
		rg.POST("/canvas/:documentId/save", h.saveProcessed)
	}
}

type addScribblesRequest struct {
	Paths []scribbles.ScribblePath `json:"paths"`
}

func (h *Handler) openSession(c *gin.Context) {
	documentID := c.Param("documentId")

	doc, err := h.Docs.Get(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		}
		return
	}

	// Documents may carry styles outside the enum; the canvas falls back
	// to crayon the way a missing style does.
	style, err := scribbles.ParseStyle(doc.ScribbleStyle)
	if err != nil {
		style = scribbles.StyleCrayon
	}

	isPDF := doc.FileType == "application/pdf"
	var base image.Image
	if !isPDF {
		img, err := h.loadBaseImage(c, doc.OriginalFileKey)
		if err != nil {
			// The canvas still opens; the document area stays blank.
			telemetry.Warn("canvas.base_image_unavailable", map[string]any{
				"document_id": documentID,
				"file_key":    doc.OriginalFileKey,
				"error":       err.Error(),
			})
		} else {
			base = img
		}
	}

	h.Manager.Open(NewSession(documentID, doc.FileName, style, base, isPDF, doc.Caption))

	respond.OK(c, gin.H{
		"documentId":   documentID,
		"style":        string(style),
		"canvasWidth":  CanvasWidth,
		"canvasHeight": CanvasHeight,
	})
}

func (h *Handler) loadBaseImage(c *gin.Context, fileKey string) (image.Image, error) {
	rc, err := h.Store.Open(c.Request.Context(), fileKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return DecodeBaseImage(data)
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	documentID := c.Param("documentId")
	session, ok := h.Manager.Get(documentID)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "no open canvas for document", nil)
		return nil, false
	}
	return session, true
}

func (h *Handler) addScribbles(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req addScribblesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	paths := req.Paths
	generated := false
	fallbackUsed := false
	if len(paths) == 0 {
		// No explicit strokes supplied (e.g. from a preset): generate a
		// batch for the session, and a caption alongside it.
		doc, err := h.Docs.Get(c.Request.Context(), session.DocumentID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
			return
		}
		result, err := h.Gen.GeneratePaths(c.Request.Context(), session.Style, doc.Intensity, CanvasWidth, CanvasHeight)
		if err != nil {
			respond.Error(c, http.StatusBadGateway, "upstream_error", "scribble generation failed", nil)
			return
		}
		paths = result.Paths
		generated = true
		fallbackUsed = result.FallbackUsed
		go h.generateCaption(session, doc.FileName)
	}

	strokes := make([]Stroke, 0, len(paths))
	for i, p := range paths {
		cmds, err := ParsePath(p.Path)
		if err != nil {
			if generated {
				// Model output is best-effort; skip what cannot be drawn.
				telemetry.Warn("canvas.unparseable_path", map[string]any{
					"document_id": session.DocumentID,
					"index":       i,
					"error":       err.Error(),
				})
				continue
			}
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid scribble path", []map[string]string{
				{"field": "paths", "issue": "invalid_path", "index": strconv.Itoa(i)},
			})
			return
		}
		color := p.Color
		if color == "" {
			color = RandomColor(session.Style)
		}
		strokes = append(strokes, Stroke{
			Commands: cmds,
			Color:    color,
			Width:    session.Style.StrokeWidth(),
		})
	}

	session.AddStrokes(strokes)

	respond.JSON(c, http.StatusAccepted, gin.H{
		"documentId":   session.DocumentID,
		"queued":       len(strokes),
		"fallbackUsed": fallbackUsed,
	})
}

// generateCaption runs independently of the stroke batch; the session shows
// the caption whenever it resolves.
func (h *Handler) generateCaption(session *Session, fileName string) {
	caption, err := h.Gen.GenerateCaption(context.Background(), fileName, session.Style)
	if err != nil {
		telemetry.Warn("canvas.caption_failed", map[string]any{
			"document_id": session.DocumentID,
			"error":       err.Error(),
		})
		return
	}
	session.SetCaption(caption)
}

func (h *Handler) clearScribbles(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Clear()
	respond.OK(c, gin.H{"documentId": session.DocumentID})
}

func (h *Handler) renderImage(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	png, err := EncodePNG(session)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render canvas", nil)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) saveProcessed(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	png, err := EncodePNG(session)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render canvas", nil)
		return
	}

	fileKey := "processed/" + session.DocumentID + ".png"
	if _, err := h.Store.SaveWithKey(c.Request.Context(), fileKey, "image/png", bytes.NewReader(png)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store processed file", nil)
		return
	}

	if err := h.Docs.AttachProcessed(c.Request.Context(), session.DocumentID, fileKey); err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update document", nil)
		}
		return
	}

	respond.OK(c, gin.H{
		"documentId":       session.DocumentID,
		"processedFileKey": fileKey,
	})
}
