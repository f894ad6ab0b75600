package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/carebridge/carebridge-backend/internal/http/handlers"
	httpMW "github.com/carebridge/carebridge-backend/internal/http/middleware"
	"github.com/carebridge/carebridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	OrchestratorHandler *httpH.OrchestratorHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readycheck", cfg.HealthHandler.ReadyCheck)
	}

	api := r.Group("/api")
	{
		if cfg.OrchestratorHandler != nil {
			api.POST("/orchestrator/query", cfg.OrchestratorHandler.Query)
			api.GET("/orchestrator/tools", cfg.OrchestratorHandler.Tools)
			api.GET("/orchestrator/status", cfg.OrchestratorHandler.Status)
		}
	}

	return r
}
