package router

import (
	"github.com/gin-gonic/gin"

	"invaudit/internal/config"
	"invaudit/internal/handler"
	"invaudit/internal/middleware"
)

// Setup builds the gin engine with all middleware and routes.
func Setup(cfg *config.Config, auditH *handler.AuditHandler, healthH *handler.HealthHandler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/healthz", healthH.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/audits", auditH.Analyze)
	}

	return r
}
