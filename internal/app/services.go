package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/data/memstore"
	"github.com/yungbote/apns-backend/internal/ingestion/advisor"
	"github.com/yungbote/apns-backend/internal/ingestion/parser"
	"github.com/yungbote/apns-backend/internal/ingestion/pipeline"
	"github.com/yungbote/apns-backend/internal/observability"
	"github.com/yungbote/apns-backend/internal/platform/logger"
	"github.com/yungbote/apns-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Student      services.StudentService
	Notification services.NotificationService
	Documents    *pipeline.Pipeline
}

func wireServices(
	gdb *gorm.DB,
	log *logger.Logger,
	cfg Config,
	status *db.Status,
	mem *memstore.Store,
	metrics *observability.Metrics,
	reposet Repos,
) Services {
	log.Info("Wiring services...")

	adv := advisor.New(cfg.Advisor, log)
	if !adv.Enabled() {
		log.Info("advisor disabled, local scoring only")
	}
	registry := parser.NewRegistry(cfg.IngestFormats)
	log.Info("ingestion formats enabled", "formats", registry.EnabledFormats())

	dispatcher := pipeline.NewDispatcher(
		gdb,
		status,
		reposet.Student,
		reposet.Notification,
		reposet.AlertAction,
		log,
		cfg.QueryTimeout,
	)

	return Services{
		Auth:         services.NewAuthService(log, status, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Student:      services.NewStudentService(log, status, mem, reposet.Student, reposet.Notification, reposet.AlertAction, cfg.QueryTimeout),
		Notification: services.NewNotificationService(log, status, mem, reposet.Notification, cfg.QueryTimeout),
		Documents:    pipeline.New(registry, adv, dispatcher, reposet.DocumentAnalysis, status, metrics, log),
	}
}
