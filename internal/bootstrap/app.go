package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pmsdoc-backend/internal/analysis"
	"pmsdoc-backend/internal/documents"
	"pmsdoc-backend/internal/extract"
	"pmsdoc-backend/internal/llm"
	openai "pmsdoc-backend/internal/llm/openai"
	"pmsdoc-backend/internal/render"
	"pmsdoc-backend/internal/services/health"
	"pmsdoc-backend/internal/shared/config"
	"pmsdoc-backend/internal/shared/server"
	"pmsdoc-backend/internal/shared/server/middleware"
	"pmsdoc-backend/internal/shared/storage/db"
	"pmsdoc-backend/internal/shared/storage/object"
	localstore "pmsdoc-backend/internal/shared/storage/object/local"
	s3store "pmsdoc-backend/internal/shared/storage/object/s3"
	"pmsdoc-backend/internal/shared/telemetry"
	"pmsdoc-backend/internal/tickets"
	"pmsdoc-backend/internal/tracker"
	"pmsdoc-backend/internal/tracker/gitlab"
	"pmsdoc-backend/internal/tracker/youtrack"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Model     llm.Completer
	Tracker   tracker.Tracker
	Renderer  render.Renderer
	Documents *documents.Service
	Composer  *tickets.Composer
	Requests  tickets.RequestRepo

	DocumentsHandler *documents.Handler
	TicketsHandler   *tickets.Handler
	TrackerHandler   *tracker.Handler
}

// Build prepares dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	model, err := BuildModel(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Model:    model,
		Tracker:  buildTracker(cfg),
		Renderer: buildRenderer(cfg),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Health:          health.NewService(pinger),
		DocumentHandler: app.DocumentsHandler,
		TicketHandler:   app.TicketsHandler,
		TrackerHandler:  app.TrackerHandler,
		Limiter:         middleware.NewRateLimiter(nil),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Shared(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// BuildModel returns the configured completer. Any provider other than
// openai yields the placeholder, which fails every call.
func BuildModel(cfg config.Config) (llm.Completer, error) {
	if strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) != "openai" {
		return llm.PlaceholderClient{}, nil
	}
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"reason": "OPENAI_API_KEY empty"})
			return llm.PlaceholderClient{}, nil
		}
		return nil, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}
	return openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.LLMModel,
		Timeout: time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
	})
}

// buildTracker falls back to tracker.Noop when the selected tracker is not
// fully configured, so document routes keep working.
func buildTracker(cfg config.Config) tracker.Tracker {
	var (
		t   tracker.Tracker
		err error
	)
	switch cfg.Tracker {
	case "youtrack":
		t, err = youtrack.New(youtrack.Config{
			BaseURL:      cfg.YouTrackBaseURL,
			Token:        cfg.YouTrackToken,
			ProjectID:    cfg.YouTrackProjectID,
			Team:         cfg.YouTrackTeam,
			CustomFields: cfg.YouTrackFields,
		})
	case "gitlab":
		t, err = gitlab.New(gitlab.Config{
			BaseURL: cfg.GitLabBaseURL,
			Token:   cfg.GitLabToken,
			Project: cfg.GitLabProject,
		})
	default:
		return tracker.Noop{}
	}
	if err != nil {
		telemetry.Warn("bootstrap.tracker_disabled", map[string]any{"tracker": cfg.Tracker, "error": err})
		return tracker.Noop{}
	}
	return t
}

func buildRenderer(cfg config.Config) render.Renderer {
	if strings.TrimSpace(cfg.RendererURL) == "" {
		return render.Noop{}
	}
	return render.NewChrome(cfg.RendererURL)
}

// ExtractOptions maps the pipeline file onto the normalizer thresholds.
func ExtractOptions(p config.Pipeline) extract.Options {
	e := p.Extraction
	return extract.Options{
		RepeatThreshold:  e.RepeatThreshold,
		MaxRemovableLen:  e.MaxRemovableLen,
		HardLineCeiling:  e.HardLineCeiling,
		MaxOutputChars:   e.MaxOutputChars,
		RawMinLen:        e.RawMinLen,
		RawKeepRatio:     e.RawKeepRatio,
		ShortFilteredLen: e.ShortFilteredLen,
		RawSurplus:       e.RawSurplus,
	}
}

// Prompts maps the pipeline prompt overrides. Blank entries keep the defaults.
func Prompts(p config.Pipeline) llm.Prompts {
	o := p.Prompts
	return llm.Prompts{
		AnalysisSystem: o.AnalysisSystem,
		AnalysisUser:   o.AnalysisUser,
		ExampleUser:    o.ExampleUser,
		TicketSystem:   o.TicketSystem,
		TicketTask:     o.TicketTask,
		TicketSpike:    o.TicketSpike,
	}
}

func buildServices(app *App) error {
	var (
		docRepo    documents.Repo
		ticketRepo documents.TicketRepo
		requests   tickets.RequestRepo
	)
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		ticketRepo = &documents.PGTicketRepo{DB: app.DB}
		requests = &tickets.PGRequestRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		ticketRepo = documents.NewMemoryTicketRepo()
		requests = tickets.NewMemoryRequestRepo()
	}

	prompts := Prompts(app.Config.Pipeline)
	composer := tickets.NewComposer(app.Model, prompts)

	app.Composer = composer
	app.Requests = requests
	app.Documents = &documents.Service{
		Repo:       docRepo,
		Tickets:    ticketRepo,
		Store:      app.Store,
		Fetcher:    documents.NewRemoteFetcher(app.Renderer),
		Normalizer: extract.NewNormalizer(ExtractOptions(app.Config.Pipeline)),
		Analyzer:   analysis.NewAnalyzer(app.Model, prompts),
		Composer:   composer,
		Tracker:    app.Tracker,
	}
	app.DocumentsHandler = documents.NewHandler(app.Documents, app.Config.PublicBaseURL)
	app.TicketsHandler = tickets.NewHandler(composer, app.Tracker, requests)
	app.TrackerHandler = tracker.NewHandler(app.Tracker)

	if app.DocumentsHandler == nil || app.TicketsHandler == nil || app.TrackerHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
