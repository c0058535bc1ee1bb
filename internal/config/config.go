package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds relay runtime configuration.
type Config struct {
	// Server
	Port               int      `env:"PORT" envDefault:"8000"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	// RequestTimeout bounds a whole inbound request; zero disables it.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0s"`
	// StatusCodeErrors maps failed generations to 502/503/504. Off, they answer 200 with an {error} body.
	StatusCodeErrors bool `env:"STATUS_CODE_ERRORS" envDefault:"false"`

	// Uploads
	DocumentsDir  string `env:"DOCUMENTS_DIR" envDefault:"documents"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"0"` // 0 = unlimited

	// Storage
	StorageProvider string `env:"STORAGE_PROVIDER" envDefault:"local"` // "local" or "minio"
	MinIOEndpoint   string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey  string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey  string `env:"MINIO_SECRET_KEY"`
	MinIOBucket     string `env:"MINIO_BUCKET" envDefault:"documents"`
	MinIOUseSSL     bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Inference backend
	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"ollama"` // "ollama" or "openai" (any OpenAI-compatible server)
	OllamaHost      string        `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	ModelName       string        `env:"MODEL_NAME" envDefault:"llama3.2"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	OpenAIKey       string        `env:"OPENAI_API_KEY"`
	GenerateTimeout time.Duration `env:"GENERATE_TIMEOUT" envDefault:"0s"`

	// Startup gate
	ReadyAttempts  int           `env:"READY_ATTEMPTS" envDefault:"10"`
	ReadyBaseDelay time.Duration `env:"READY_BASE_DELAY" envDefault:"1s"`
	ReadyMaxDelay  time.Duration `env:"READY_MAX_DELAY" envDefault:"10s"`

	// ReadyProbeTimeout caps one liveness probe, independent of GENERATE_TIMEOUT.
	ReadyProbeTimeout time.Duration `env:"READY_PROBE_TIMEOUT" envDefault:"5s"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// Events
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"none"` // "none" or "nats"
	NATSURL        string `env:"NATS_URL"`

	// Ledger
	LedgerProvider string `env:"LEDGER_PROVIDER" envDefault:"none"` // "none" or "postgres"
	DBURL          string `env:"DB_URL"`
	LedgerTable    string `env:"LEDGER_TABLE" envDefault:"uploads"`
}

// ClientConfig configures the command-line interface.
type ClientConfig struct {
	RelayURL       string        `env:"RELAY_URL" envDefault:"http://localhost:8000"`
	RequestTimeout time.Duration `env:"RELAY_TIMEOUT" envDefault:"0s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"warn"`
}

// Load reads relay configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// LoadClient reads CLI configuration from environment variables with defaults.
func LoadClient() ClientConfig {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
