package app

import (
	"testing"
	"time"

	"github.com/yungbote/apns-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "API_PORT", "STORE_MODE", "CEREBRAS_API_KEY", "CEREBRUS_API_KEY", "CORS_ALLOW_ORIGINS", "UPLOAD_MAX_BYTES"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "3001" {
		t.Fatalf("port=%q", cfg.Port)
	}
	if cfg.StoreMode != StoreModePostgres || !cfg.MemoryFallback {
		t.Fatalf("store mode=%q fallback=%v", cfg.StoreMode, cfg.MemoryFallback)
	}
	if cfg.QueryTimeout != 3*time.Second || cfg.Database.MaxOpenConns != 10 {
		t.Fatalf("unexpected pool settings: %+v %v", cfg.Database, cfg.QueryTimeout)
	}
	if cfg.Advisor.APIKey != "" || cfg.Advisor.Model != "llama-3.3-70b" {
		t.Fatalf("unexpected advisor config: %+v", cfg.Advisor)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors=%v", cfg.CORSOrigins)
	}
	if cfg.UploadMaxBytes != 20<<20 {
		t.Fatalf("upload max=%d", cfg.UploadMaxBytes)
	}
}

func TestLoadConfigHonoursDeprecatedAliases(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_PORT", "9000")
	t.Setenv("CEREBRAS_API_KEY", "")
	t.Setenv("CEREBRUS_API_KEY", "legacy-key")
	t.Setenv("STORE_MODE", "Memory")
	t.Setenv("INGEST_FORMATS", "csv, txt")

	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "9000" {
		t.Fatalf("port=%q", cfg.Port)
	}
	if cfg.Advisor.APIKey != "legacy-key" {
		t.Fatalf("api key=%q", cfg.Advisor.APIKey)
	}
	if cfg.StoreMode != StoreModeMemory {
		t.Fatalf("store mode=%q", cfg.StoreMode)
	}
	if len(cfg.IngestFormats) != 2 || cfg.IngestFormats[1] != "txt" {
		t.Fatalf("formats=%v", cfg.IngestFormats)
	}
}
