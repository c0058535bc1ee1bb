package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "DOCUMENTS_DIR", "OLLAMA_HOST", "MODEL_NAME", "LLM_PROVIDER",
		"STORAGE_PROVIDER", "CACHE_PROVIDER", "EVENTS_PROVIDER", "LEDGER_PROVIDER",
		"READY_ATTEMPTS", "READY_BASE_DELAY", "READY_PROBE_TIMEOUT", "MAX_UPLOAD_SIZE", "STATUS_CODE_ERRORS", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8000},
		{"LogLevel", cfg.LogLevel, "info"},
		{"DocumentsDir", cfg.DocumentsDir, "documents"},
		{"OllamaHost", cfg.OllamaHost, "http://localhost:11434"},
		{"ModelName", cfg.ModelName, "llama3.2"},
		{"LLMProvider", cfg.LLMProvider, "ollama"},
		{"StorageProvider", cfg.StorageProvider, "local"},
		{"CacheProvider", cfg.CacheProvider, "none"},
		{"EventsProvider", cfg.EventsProvider, "none"},
		{"LedgerProvider", cfg.LedgerProvider, "none"},
		{"ReadyAttempts", cfg.ReadyAttempts, 10},
		{"ReadyBaseDelay", cfg.ReadyBaseDelay, time.Second},
		{"ReadyProbeTimeout", cfg.ReadyProbeTimeout, 5 * time.Second},
		{"MaxUploadSize", cfg.MaxUploadSize, int64(0)},
		{"StatusCodeErrors", cfg.StatusCodeErrors, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}

	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("expected CORS origins [*], got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MODEL_NAME", "mistral")
	t.Setenv("READY_MAX_DELAY", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
	if cfg.ModelName != "mistral" {
		t.Errorf("expected model 'mistral', got %s", cfg.ModelName)
	}
	if cfg.ReadyMaxDelay != 3*time.Second {
		t.Errorf("expected ready max delay 3s, got %v", cfg.ReadyMaxDelay)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected 2 CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadClient(t *testing.T) {
	for _, key := range []string{"RELAY_URL", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadClient()
	if cfg.RelayURL != "http://localhost:8000" {
		t.Errorf("expected default relay URL, got %s", cfg.RelayURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log level 'warn', got %s", cfg.LogLevel)
	}

	t.Setenv("RELAY_URL", "http://relay:9000")
	if got := LoadClient().RelayURL; got != "http://relay:9000" {
		t.Errorf("expected overridden relay URL, got %s", got)
	}
}
