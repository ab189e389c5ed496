package app

import (
	"github.com/yungbote/apns-backend/internal/data/db"
	apphttp "github.com/yungbote/apns-backend/internal/http"
	httpH "github.com/yungbote/apns-backend/internal/http/handlers"
	httpMW "github.com/yungbote/apns-backend/internal/http/middleware"
	"github.com/yungbote/apns-backend/internal/observability"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	Student      *httpH.StudentHandler
	Notification *httpH.NotificationHandler
	Evaluation   *httpH.EvaluationHandler
}

func wireHandlers(log *logger.Logger, cfg Config, status *db.Status, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(status),
		Auth:         httpH.NewAuthHandler(services.Auth),
		Student:      httpH.NewStudentHandler(services.Student),
		Notification: httpH.NewNotificationHandler(services.Notification),
		Evaluation:   httpH.NewEvaluationHandler(services.Documents, cfg.UploadMaxBytes),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	log.Info("Wiring router...")
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		CORSOrigins:         cfg.CORSOrigins,
		TracingEnabled:      cfg.OtelEnabled,
		ServiceName:         cfg.ServiceName,
		AuthMiddleware:      middleware.Auth,
		HealthHandler:       handlers.Health,
		AuthHandler:         handlers.Auth,
		StudentHandler:      handlers.Student,
		NotificationHandler: handlers.Notification,
		EvaluationHandler:   handlers.Evaluation,
	})
}
