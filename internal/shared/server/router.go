package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"toddlerdoc-backend/internal/canvas"
	"toddlerdoc-backend/internal/documents"
	"toddlerdoc-backend/internal/presets"
	"toddlerdoc-backend/internal/scribbles"
	"toddlerdoc-backend/internal/shared/config"
	"toddlerdoc-backend/internal/shared/metrics"
	"toddlerdoc-backend/internal/shared/server/middleware"
	"toddlerdoc-backend/internal/shared/server/respond"
	"toddlerdoc-backend/internal/uploads"
)

// RouterDeps carries the handlers the router wires up. PresetsHandler may
// be nil when the presets feature is disabled.
type RouterDeps struct {
	Config           config.Config
	DocumentsHandler *documents.Handler
	UploadsHandler   *uploads.Handler
	ScribblesHandler *scribbles.Handler
	CanvasHandler    *canvas.Handler
	PresetsHandler   *presets.Handler
	// LocalFilesDir, when set, serves stored objects at /files for the
	// local object store.
	LocalFilesDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.LocalFilesDir != "" {
		r.Static("/files", deps.LocalFilesDir)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		GroupFor: rateLimitGroup,
		Rules: map[string]middleware.RateLimitRule{
			// Generation calls hit the model and are kept slow; everything
			// else gets a roomier bucket.
			"GENERATION": {Rate: 1, Burst: 5},
			"DEFAULT":    {Rate: 10, Burst: 30},
		},
	}))

	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	registerMeRoutes(api)

	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(api)
	}
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.ScribblesHandler != nil {
		deps.ScribblesHandler.RegisterRoutes(api)
	}
	if deps.CanvasHandler != nil {
		deps.CanvasHandler.RegisterRoutes(api)
	}
	if deps.PresetsHandler != nil {
		deps.PresetsHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost {
		switch c.FullPath() {
		case "/api/v1/scribbles/paths", "/api/v1/scribbles/caption":
			return "GENERATION"
		}
	}
	return "DEFAULT"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
