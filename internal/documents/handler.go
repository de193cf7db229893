package documents

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"toddlerdoc-backend/internal/shared/server/middleware"
	"toddlerdoc-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the documents service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.createDocument)
	rg.GET("/documents", h.listDocuments)
	rg.GET("/documents/:id", h.getDocument)
	rg.PATCH("/documents/:id/processed", h.attachProcessed)
}

type createDocumentRequest struct {
	OriginalFileKey string  `json:"originalFileKey"`
	FileName        string  `json:"fileName"`
	FileType        string  `json:"fileType"`
	ScribbleStyle   string  `json:"scribbleStyle"`
	Intensity       float64 `json:"intensity"`
	Caption         string  `json:"caption"`
}

type attachProcessedRequest struct {
	ProcessedFileKey string `json:"processedFileKey"`
}

func (h *Handler) createDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		OriginalFileKey: req.OriginalFileKey,
		FileName:        req.FileName,
		FileType:        req.FileType,
		ScribbleStyle:   req.ScribbleStyle,
		Intensity:       req.Intensity,
		Caption:         req.Caption,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "originalFileKey and fileName are required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"documentId": doc.ID,
		"fileName":   doc.FileName,
		"pageCount":  doc.PageCount,
	})
}

func (h *Handler) getDocument(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}

	doc, err := h.Svc.Get(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		}
		return
	}

	respond.OK(c, toResponse(doc))
}

func (h *Handler) listDocuments(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	docs, err := h.Svc.ListMine(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	respond.OK(c, out)
}

func (h *Handler) attachProcessed(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}

	var req attachProcessedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.AttachProcessed(c.Request.Context(), documentID, req.ProcessedFileKey); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "processedFileKey is required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update document", nil)
		}
		return
	}

	respond.OK(c, gin.H{"documentId": documentID})
}
