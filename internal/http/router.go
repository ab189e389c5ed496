package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/apns-backend/internal/http/handlers"
	httpMW "github.com/yungbote/apns-backend/internal/http/middleware"
	"github.com/yungbote/apns-backend/internal/observability"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	TracingEnabled bool
	ServiceName    string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	StudentHandler      *httpH.StudentHandler
	NotificationHandler *httpH.NotificationHandler
	EvaluationHandler   *httpH.EvaluationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	if cfg.AuthMiddleware != nil {
		r.Use(cfg.AuthMiddleware.Identify())
	}

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/api/health", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}

		// Evaluation
		if cfg.EvaluationHandler != nil {
			api.POST("/evaluation/analyze-document", cfg.EvaluationHandler.AnalyzeDocument)
			api.GET("/evaluation/analyses", cfg.EvaluationHandler.ListAnalyses)
		}

		// Students
		if cfg.StudentHandler != nil {
			api.GET("/students", cfg.StudentHandler.List)
			api.POST("/students", cfg.StudentHandler.Create)
			api.GET("/students/:roll_no", cfg.StudentHandler.Profile)
			api.POST("/students/:roll_no/contact-actions", cfg.StudentHandler.ContactAction)
		}

		// Notifications
		if cfg.NotificationHandler != nil {
			api.GET("/notifications", cfg.NotificationHandler.List)
			api.POST("/notifications", cfg.NotificationHandler.Create)
		}
	}

	return r
}
