package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/http/handlers"
	"github.com/yungbote/apns-backend/internal/ingestion/advisor"
	"github.com/yungbote/apns-backend/internal/platform/envutil"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

const (
	StoreModePostgres = "postgres"
	StoreModeMemory   = "memory"
)

type Config struct {
	Port    string
	LogMode string

	Database       db.Config
	QueryTimeout   time.Duration
	StoreMode      string
	MemoryFallback bool
	SeedSampleData bool

	Advisor advisor.Config

	IngestFormats  []string
	UploadMaxBytes int64

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	CORSOrigins []string

	MetricsEnabled bool
	OtelEnabled    bool
	OtelEndpoint   string
	OtelHeaders    string
	OtelInsecure   bool
	OtelSampler    float64
	ServiceName    string
	Environment    string
}

// aliasedKey is a setting that still honours a deprecated name.
type aliasedKey struct {
	name, alias string
}

var (
	keyPort          = aliasedKey{"PORT", "API_PORT"}
	keyAdvisorAPIKey = aliasedKey{"CEREBRAS_API_KEY", "CEREBRUS_API_KEY"}
	keyAdvisorModel  = aliasedKey{"CEREBRAS_MODEL", "CEREBRUS_MODEL"}
	keyAdvisorURL    = aliasedKey{"CEREBRAS_API_BASE_URL", "CEREBRUS_API_BASE_URL"}
)

// LoadEnvFile loads .env when present. A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

func LoadConfig(log *logger.Logger) Config {
	aliased := func(k aliasedKey, def string) string {
		v, usedAlias := envutil.StringWithAlias(k.name, k.alias, def)
		if usedAlias {
			log.Warn("deprecated environment variable in use", "use", k.name, "deprecated", k.alias)
		}
		return v
	}

	storeMode := strings.ToLower(envutil.String("STORE_MODE", StoreModePostgres))
	if storeMode != StoreModeMemory {
		storeMode = StoreModePostgres
	}

	return Config{
		Port:    aliased(keyPort, "3001"),
		LogMode: envutil.String("LOG_MODE", "development"),

		Database: db.Config{
			URL:          envutil.String("DATABASE_URL", db.DefaultDatabaseURL),
			Schema:       envutil.String("DB_SCHEMA", db.DefaultSchema),
			MaxOpenConns: envutil.Int("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envutil.Int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxIdle:  envutil.Seconds("DB_CONN_MAX_IDLE_SECONDS", 5*time.Minute),
		},
		QueryTimeout:   envutil.Seconds("DB_QUERY_TIMEOUT_SECONDS", 3*time.Second),
		StoreMode:      storeMode,
		MemoryFallback: envutil.Bool("MEMORY_FALLBACK", true),
		SeedSampleData: envutil.Bool("SEED_SAMPLE_DATA", true),

		Advisor: advisor.Config{
			APIKey:  aliased(keyAdvisorAPIKey, ""),
			Model:   aliased(keyAdvisorModel, advisor.DefaultModel),
			BaseURL: aliased(keyAdvisorURL, advisor.DefaultBaseURL),
			Timeout: envutil.Seconds("ADVISOR_TIMEOUT_SECONDS", advisor.DefaultTimeout),
		},

		IngestFormats:  envutil.List("INGEST_FORMATS", nil),
		UploadMaxBytes: int64(envutil.Int("UPLOAD_MAX_BYTES", int(handlers.DefaultUploadMaxBytes))),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),

		CORSOrigins: envutil.List("CORS_ALLOW_ORIGINS", []string{"*"}),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		OtelEnabled:    envutil.Bool("OTEL_ENABLED", false),
		OtelEndpoint:   envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelHeaders:    envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OtelInsecure:   envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampler:    envutil.Float("OTEL_SAMPLER_RATIO", 1),
		ServiceName:    envutil.String("OTEL_SERVICE_NAME", "apns-backend"),
		Environment:    envutil.String("APP_ENV", "development"),
	}
}
