// Package router wires middleware and route registrars onto the gin
// engine. Data routes live under /api/v1 behind tenant resolution;
// probes and webhook intake sit at the root because they authenticate
// differently (not at all, and by body signature).
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/growthdeck/backend/internal/infrastructure/logger"
	"github.com/growthdeck/backend/internal/interfaces/http/handler"
	"github.com/growthdeck/backend/internal/interfaces/http/middleware"
)

// Registrar registers routes on a group.
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds router-level settings.
type Config struct {
	JWTSecret    string
	MaxBodyBytes int64
	Logger       *zap.Logger
}

// Setup attaches middleware and all route registrars to the engine.
func Setup(engine *gin.Engine, cfg Config, system *handler.SystemHandler, webhooks *handler.WebhookHandler, registrars ...Registrar) {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	system.RegisterRoutes(engine)
	webhooks.RegisterRoutes(&engine.RouterGroup)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWT(cfg.JWTSecret))
	api.Use(middleware.Tenant())
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
}
