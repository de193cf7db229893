package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"toddlerdoc-backend/internal/canvas"
	"toddlerdoc-backend/internal/documents"
	"toddlerdoc-backend/internal/llm"
	"toddlerdoc-backend/internal/llm/openai"
	"toddlerdoc-backend/internal/presets"
	"toddlerdoc-backend/internal/scribbles"
	"toddlerdoc-backend/internal/shared/config"
	"toddlerdoc-backend/internal/shared/server"
	"toddlerdoc-backend/internal/shared/storage/db"
	"toddlerdoc-backend/internal/shared/storage/object"
	localstore "toddlerdoc-backend/internal/shared/storage/object/local"
	miniostore "toddlerdoc-backend/internal/shared/storage/object/minio"
	s3store "toddlerdoc-backend/internal/shared/storage/object/s3"
	"toddlerdoc-backend/internal/shared/telemetry"
	"toddlerdoc-backend/internal/uploads"
)

// App holds the wired application graph.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	DocumentsService *documents.Service
	CanvasManager    *canvas.Manager
}

// Build wires storage, repositories, services and handlers into a router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	database, docsRepo, presetsRepo, err := buildRepos(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, localFilesDir, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient := buildLLMClient(cfg)

	docsService := &documents.Service{Store: store, Repo: docsRepo}
	scribblesService := scribbles.NewService(llmClient)
	manager := canvas.NewManager()

	var presetsHandler *presets.Handler
	if cfg.EnablePresets {
		// The Postgres table is seeded by migrations or by hand; only the
		// in-memory repo starts empty.
		if database == nil {
			if err := presets.Seed(ctx, presetsRepo); err != nil {
				telemetry.Warn("bootstrap.presets_seed_failed", map[string]any{"error": err.Error()})
			}
		}
		presetsHandler = presets.NewHandler(presetsRepo)
	}

	deps := server.RouterDeps{
		Config:           cfg,
		DocumentsHandler: documents.NewHandler(docsService),
		UploadsHandler:   uploads.NewHandler(store, cfg.ObjectStoreType == "local"),
		ScribblesHandler: scribbles.NewHandler(scribblesService),
		CanvasHandler:    canvas.NewHandler(manager, docsService, scribblesService, store, cfg.EnableProcessedSave),
		PresetsHandler:   presetsHandler,
		LocalFilesDir:    localFilesDir,
	}

	return &App{
		Config:           cfg,
		Router:           server.NewRouter(deps),
		DB:               database,
		Store:            store,
		DocumentsService: docsService,
		CanvasManager:    manager,
	}, nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// buildRepos connects to Postgres when DATABASE_URL is set and runs
// migrations. In dev without a database it falls back to in-memory repos so
// the server still comes up.
func buildRepos(ctx context.Context, cfg config.Config) (*sql.DB, documents.DocumentsRepo, presets.PresetsRepo, error) {
	if cfg.DatabaseURL == "" {
		if cfg.Env == "production" {
			return nil, nil, nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "no DATABASE_URL"})
		return nil, documents.NewMemoryRepo(), presets.NewMemoryRepo(), nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.RunMigrations(migrateCtx, database); err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, &documents.PGRepo{DB: database}, &presets.PGRepo{DB: database}, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, string, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, "", fmt.Errorf("init s3 store: %w", err)
		}
		return store, "", nil
	case "minio":
		store, err := miniostore.New(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, "", fmt.Errorf("init minio store: %w", err)
		}
		return store, "", nil
	default:
		baseURL := cfg.PublicBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:" + cfg.Port
		}
		return localstore.New(cfg.LocalStoreDir, baseURL), cfg.LocalStoreDir, nil
	}
}

// buildLLMClient picks the configured provider. Outside production a missing
// API key degrades to the placeholder client so generation endpoints still
// answer with fallbacks.
func buildLLMClient(cfg config.Config) llm.Client {
	if cfg.LLMProvider != "openai" {
		return llm.PlaceholderClient{}
	}
	client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
	if err != nil {
		if cfg.Env == "production" {
			telemetry.Error("bootstrap.llm_client", map[string]any{"error": err.Error()})
		} else {
			telemetry.Warn("bootstrap.llm_client_placeholder", map[string]any{"error": err.Error()})
		}
		return llm.PlaceholderClient{}
	}
	return client
}
