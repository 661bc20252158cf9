package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"pmsdoc-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Env             string   `envconfig:"ENV" default:"dev"`
	CORSAllowOrigin []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173"`
	PublicBaseURL   string   `envconfig:"PUBLIC_BASE_URL"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	ObjectStoreType string `envconfig:"OBJECT_STORE" default:"local"`
	LocalStoreDir   string `envconfig:"LOCAL_STORE_DIR" default:"./data"`
	AWSRegion       string `envconfig:"AWS_REGION"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Prefix        string `envconfig:"S3_PREFIX"`
	SSEKMSKeyID     string `envconfig:"SSE_KMS_KEY_ID"`

	LLMProvider          string `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMModel             string `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `envconfig:"OPENAI_BASE_URL"`
	OpenAITimeoutSeconds int    `envconfig:"OPENAI_TIMEOUT_SECONDS" default:"120"`

	Tracker           string `envconfig:"TRACKER" default:"youtrack"`
	YouTrackBaseURL   string `envconfig:"YOUTRACK_BASE_URL"`
	YouTrackToken     string `envconfig:"YOUTRACK_TOKEN"`
	YouTrackProjectID string `envconfig:"YOUTRACK_PROJECT_ID"`
	YouTrackTeam      string `envconfig:"YOUTRACK_TEAM" default:"BE"`
	YouTrackFields    bool   `envconfig:"YOUTRACK_CUSTOM_FIELDS" default:"false"`
	GitLabBaseURL     string `envconfig:"GITLAB_BASE_URL"`
	GitLabToken       string `envconfig:"GITLAB_TOKEN"`
	GitLabProject     string `envconfig:"GITLAB_PROJECT"`

	ClientKey   string `envconfig:"CLIENT_KEY"`
	RendererURL string `envconfig:"RENDERER_URL"`

	PipelineConfigPath string `envconfig:"PIPELINE_CONFIG"`

	RateLimitModelRPS   float64 `envconfig:"RATE_LIMIT_MODEL_RPS" default:"0.5"`
	RateLimitModelBurst int     `envconfig:"RATE_LIMIT_MODEL_BURST" default:"5"`

	Pipeline Pipeline `ignored:"true"`
}

// Load reads configuration from .env files (best effort) and the environment.
func Load() (Config, error) {
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.ObjectStoreType = normalizeStoreType(cfg.ObjectStoreType)
	cfg.Tracker = normalizeTracker(cfg.Tracker)
	cfg.CORSAllowOrigin = trimAll(cfg.CORSAllowOrigin)

	if cfg.Env == "production" && strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": cfg.Env})
	}

	pipeline, err := LoadPipeline(cfg.PipelineConfigPath)
	if err != nil {
		return Config{}, err
	}
	cfg.Pipeline = pipeline

	return cfg, nil
}

func trimAll(in []string) []string {
	var out []string
	for _, p := range in {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeTracker(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gitlab":
		return "gitlab"
	case "none", "off", "":
		return "none"
	default:
		return "youtrack"
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
