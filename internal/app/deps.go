package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"support-bot/internal/cache"
	"support-bot/internal/config"
	"support-bot/internal/llm"
	"support-bot/internal/logger"
	"support-bot/internal/metrics"
	"support-bot/internal/queue"
	"support-bot/internal/storage"
	"support-bot/internal/store"
)

// Deps bundles the relay's runtime dependencies. Handlers receive it explicitly.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Storage   storage.Storage
	Generator llm.Generator
	Cache     cache.Cache
	Events    queue.Publisher
	Ledger    store.Store
	Metrics   *metrics.Metrics
}

// LoadEnv reads .env when present. A missing file is not an error.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	if err := LoadEnv(); err != nil {
		return Deps{}, err
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	return BuildWith(cfg, log)
}

// BuildWith wires components for an already loaded config.
func BuildWith(cfg config.Config, log *slog.Logger) (Deps, error) {
	st, err := buildStorage(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize storage: %w", err)
	}
	gen, err := buildGenerator(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	events, err := buildEvents(cfg, log)
	if err != nil {
		_ = c.Close()
		return Deps{}, fmt.Errorf("failed to initialize events: %w", err)
	}
	ledger, err := buildLedger(cfg, log)
	if err != nil {
		_ = c.Close()
		_ = events.Close()
		return Deps{}, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	m, err := metrics.New()
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return Deps{
		Config:    cfg,
		Log:       log,
		Storage:   st,
		Generator: gen,
		Cache:     c,
		Events:    events,
		Ledger:    ledger,
		Metrics:   m,
	}, nil
}

// Close releases connections held by optional components.
func (d Deps) Close() error {
	var errs []error
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.Events != nil {
		errs = append(errs, d.Events.Close())
	}
	if d.Ledger != nil {
		errs = append(errs, d.Ledger.Close())
	}
	return errors.Join(errs...)
}

func buildStorage(cfg config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case "local", "":
		st, err := storage.NewLocal(cfg.DocumentsDir)
		if err != nil {
			return nil, err
		}
		log.Info("using local document storage", "dir", cfg.DocumentsDir)
		return st, nil
	case "minio":
		st, err := storage.NewMinIO(storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, err
		}
		log.Info("using MinIO document storage", "endpoint", cfg.MinIOEndpoint, "bucket", cfg.MinIOBucket)
		return st, nil
	default:
		return nil, fmt.Errorf("invalid STORAGE_PROVIDER: %s (valid options: local, minio)", cfg.StorageProvider)
	}
}

func buildGenerator(cfg config.Config, log *slog.Logger) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case "ollama", "":
		log.Info("using Ollama backend", "host", cfg.OllamaHost, "model", cfg.ModelName)
		return llm.NewOllama(cfg.OllamaHost, cfg.ModelName, cfg.GenerateTimeout), nil
	case "openai":
		if cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("OPENAI_BASE_URL is required when LLM_PROVIDER=openai")
		}
		g, err := llm.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.ModelName, cfg.GenerateTimeout)
		if err != nil {
			return nil, err
		}
		log.Info("using OpenAI-compatible backend", "base_url", cfg.OpenAIBaseURL, "model", cfg.ModelName)
		return g, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: ollama, openai)", cfg.LLMProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "none", "":
		return cache.NewNoOpCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		log.Info("using Redis answer cache", "addr", cfg.RedisAddr, "ttl_seconds", cfg.CacheTTL)
		return c, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, redis)", cfg.CacheProvider)
	}
}

func buildEvents(cfg config.Config, log *slog.Logger) (queue.Publisher, error) {
	switch cfg.EventsProvider {
	case "none", "":
		return queue.NoOp{}, nil
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when EVENTS_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS upload events")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: none, nats)", cfg.EventsProvider)
	}
}

func buildLedger(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.LedgerProvider {
	case "none", "":
		return store.NoOp{}, nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when LEDGER_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL, cfg.LedgerTable)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres upload ledger", "table", cfg.LedgerTable)
		return db, nil
	default:
		return nil, fmt.Errorf("invalid LEDGER_PROVIDER: %s (valid options: none, postgres)", cfg.LedgerProvider)
	}
}
