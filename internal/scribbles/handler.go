package scribbles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"toddlerdoc-backend/internal/shared/server/respond"
)

// DefaultCanvasWidth and DefaultCanvasHeight match the editing canvas size.
const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

// Handler wires HTTP handlers to the scribble generation service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/scribbles/caption", h.generateCaption)
	rg.POST("/scribbles/paths", h.generatePaths)
}

type captionRequest struct {
	FileName      string `json:"fileName"`
	ScribbleStyle string `json:"scribbleStyle"`
}

type pathsRequest struct {
	Style        string   `json:"style"`
	Intensity    *float64 `json:"intensity"`
	CanvasWidth  int      `json:"canvasWidth"`
	CanvasHeight int      `json:"canvasHeight"`
}

func (h *Handler) generateCaption(c *gin.Context) {
	var req captionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	style, err := ParseStyle(req.ScribbleStyle)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown scribble style", []map[string]string{
			{"field": "scribbleStyle", "issue": "unknown_style"},
		})
		return
	}

	caption, err := h.Svc.GenerateCaption(c.Request.Context(), req.FileName, style)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "upstream_error", "caption generation failed", nil)
		return
	}

	respond.OK(c, gin.H{"caption": caption})
}

func (h *Handler) generatePaths(c *gin.Context) {
	var req pathsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	style, err := ParseStyle(req.Style)
	if err != nil {
		if errors.Is(err, ErrUnknownStyle) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown scribble style", []map[string]string{
				{"field": "style", "issue": "unknown_style"},
			})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid style", nil)
		return
	}
	intensity := 5.0
	if req.Intensity != nil {
		intensity = *req.Intensity
	}
	if intensity < 0 || intensity > 10 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "intensity must be between 0 and 10", []map[string]string{
			{"field": "intensity", "issue": "out_of_range"},
		})
		return
	}
	width := req.CanvasWidth
	if width <= 0 {
		width = DefaultCanvasWidth
	}
	height := req.CanvasHeight
	if height <= 0 {
		height = DefaultCanvasHeight
	}

	result, err := h.Svc.GeneratePaths(c.Request.Context(), style, intensity, width, height)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "upstream_error", "scribble generation failed", nil)
		return
	}

	respond.OK(c, gin.H{
		"paths":        result.Paths,
		"fallbackUsed": result.FallbackUsed,
	})
}
