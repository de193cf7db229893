package presets

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"toddlerdoc-backend/internal/scribbles"
	"toddlerdoc-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the presets repo.
type Handler struct {
	Repo PresetsRepo
}

// NewHandler constructs a Handler.
func NewHandler(repo PresetsRepo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches preset routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/presets", h.listPresets)
	rg.GET("/presets/:id", h.getPreset)
}

type presetResponse struct {
	PresetID  string   `json:"presetId"`
	Name      string   `json:"name"`
	Style     string   `json:"style"`
	Paths     []string `json:"paths"`
	Colors    []string `json:"colors"`
	Intensity float64  `json:"intensity"`
}

func toResponse(p Preset) presetResponse {
	return presetResponse{
		PresetID:  p.ID,
		Name:      p.Name,
		Style:     p.Style,
		Paths:     p.Paths,
		Colors:    p.Colors,
		Intensity: p.Intensity,
	}
}

func (h *Handler) listPresets(c *gin.Context) {
	style := c.Query("style")
	if style != "" {
		if _, err := scribbles.ParseStyle(style); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown scribble style", nil)
			return
		}
	}

	list, err := h.Repo.List(c.Request.Context(), style)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list presets", nil)
		return
	}

	out := make([]presetResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toResponse(p))
	}
	respond.OK(c, out)
}

func (h *Handler) getPreset(c *gin.Context) {
	preset, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "preset not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load preset", nil)
		}
		return
	}
	respond.OK(c, toResponse(preset))
}

// Seed installs a small built-in preset set per style so the gallery is
// never empty on a fresh deployment. Existing IDs are overwritten.
func Seed(ctx context.Context, repo PresetsRepo) error {
	now := time.Now().UTC()
	for _, style := range scribbles.Styles() {
		palette := style.Palette()
		preset := Preset{
			ID:    uuid.NewString(),
			Name:  "starter " + string(style),
			Style: string(style),
			Paths: []string{
				"M50,80 Q200,20 350,90 Q500,160 650,70",
				"M120,400 L260,310 L340,450 L470,360",
				"M80,200 C180,120 280,280 380,190",
			},
			Colors:    palette[:min(3, len(palette))],
			Intensity: 5,
			CreatedAt: now,
		}
		if err := repo.Create(ctx, preset); err != nil {
			return err
		}
	}
	return nil
}
