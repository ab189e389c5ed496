package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/data/memstore"
	apphttp "github.com/yungbote/apns-backend/internal/http"
	"github.com/yungbote/apns-backend/internal/observability"
	"github.com/yungbote/apns-backend/internal/platform/envutil"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

const storeProbeInterval = 15 * time.Second

var (
	errMemoryModeDisabled = errors.New("STORE_MODE=memory requires MEMORY_FALLBACK=true")
	errMemoryMode         = errors.New("store mode is memory")
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Status   *db.Status
	Memory   *memstore.Store
	Metrics  *observability.Metrics
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Services Services

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	LoadEnvFile()
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	if cfg.StoreMode == StoreModeMemory && !cfg.MemoryFallback {
		log.Sync()
		return nil, errMemoryModeDisabled
	}

	pg, startErr := connectStore(ctx, log, cfg)
	if startErr != nil && !cfg.MemoryFallback {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", startErr)
	}
	var theDB *gorm.DB
	if pg != nil {
		theDB = pg.DB()
	}
	status := db.NewStatus(theDB, startErr)
	if startErr != nil && !errors.Is(startErr, errMemoryMode) {
		log.Warn("database unavailable, serving from memory", "error", startErr)
	}

	var mem *memstore.Store
	if cfg.MemoryFallback {
		mem = memstore.NewSeeded()
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics, err = observability.NewMetrics()
		if err != nil {
			closeStore(log, pg)
			log.Sync()
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		if err := metrics.RegisterStoreStatus(status.Connected); err != nil {
			log.Warn("store status gauge not registered", "error", err)
		}
		if theDB != nil {
			if sqlDB, err := theDB.DB(); err == nil {
				if err := metrics.RegisterDBStats(sqlDB, "postgres"); err != nil {
					log.Warn("db stats collector not registered", "error", err)
				}
			}
		}
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     observability.ParseHeaders(cfg.OtelHeaders),
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampler,
	})

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, status, mem, metrics, reposet)
	handlerset := wireHandlers(log, cfg, status, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Status:       status,
		Memory:       mem,
		Metrics:      metrics,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// connectStore opens, migrates and optionally seeds Postgres. A non-nil
// error means the app starts disconnected.
func connectStore(ctx context.Context, log *logger.Logger, cfg Config) (*db.PostgresService, error) {
	if cfg.StoreMode == StoreModeMemory {
		return nil, errMemoryMode
	}

	pg, err := db.NewPostgresService(ctx, log, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		closeStore(log, pg)
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if cfg.SeedSampleData {
		if err := db.SeedSampleData(ctx, pg.DB()); err != nil {
			log.Warn("sample data not seeded", "error", err)
		}
	}
	return pg, nil
}

func closeStore(log *logger.Logger, pg *db.PostgresService) {
	if pg == nil {
		return
	}
	if err := pg.Close(); err != nil {
		log.Warn("postgres close failed", "error", err)
	}
}

// Run serves until ctx is cancelled. While a configured database is marked
// down it is pinged every storeProbeInterval so the process can leave memory
// fallback without a restart. A process that never opened a pool (Postgres
// unreachable at startup, or STORE_MODE=memory) has nothing to ping and stays
// in memory mode until it is restarted.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("server listening", "addr", addr, "mode", a.Status.Mode())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Server.Run(ctx, addr) })
	if a.DB != nil {
		g.Go(func() error {
			a.probeStore(ctx, storeProbeInterval)
			return nil
		})
	} else {
		a.Log.Warn("no database pool, memory mode lasts until restart")
	}
	return g.Wait()
}

func (a *App) probeStore(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.Status.Connected() {
				continue
			}
			if a.Status.Check(ctx) {
				a.Log.Info("database reachable again", "mode", a.Status.Mode())
			}
		}
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	closeStore(a.Log, a.pg)
	if a.Log != nil {
		a.Log.Sync()
	}
}
