package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stocksync/engine/internal/interfaces/http/handler"
	"github.com/stocksync/engine/internal/interfaces/http/middleware"
)

// Config holds the handlers the router wires up
type Config struct {
	SyncHandler   *handler.SyncHandler
	PolicyHandler *handler.PolicyHandler
	HealthHandler *handler.HealthHandler
	Logger        *zap.Logger
	Env           string
}

// New builds the gin engine with all routes registered
func New(cfg Config) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(cfg.Logger))
	engine.Use(middleware.RequestLogger(cfg.Logger.Named("http")))

	engine.GET("/health", cfg.HealthHandler.Health)

	v1 := engine.Group("/api/v1")
	{
		syncGroup := v1.Group("/sync")
		{
			syncGroup.POST("/:type/run", cfg.SyncHandler.TriggerRun)
			syncGroup.GET("/runs", cfg.SyncHandler.ListRuns)
			syncGroup.GET("/:type/failures", cfg.SyncHandler.ListFailures)
		}
		v1.GET("/policy/:product_id/:warehouse_id", cfg.PolicyHandler.Resolve)
	}

	return engine
}
