// Package router wires handlers, middleware and the gin engine together.
package router

import (
	"github.com/erp/cashdrawer/internal/infrastructure/auth"
	"github.com/erp/cashdrawer/internal/infrastructure/config"
	"github.com/erp/cashdrawer/internal/infrastructure/logger"
	"github.com/erp/cashdrawer/internal/interfaces/http/handler"
	"github.com/erp/cashdrawer/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar registers a handler's routes on a group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Dependencies carries everything the router needs
type Dependencies struct {
	Config          *config.Config
	Logger          *zap.Logger
	JWTService      *auth.JWTService
	AuthHandler     *handler.AuthHandler
	RegisterHandler *handler.RegisterHandler
	AuditHandler    *handler.AuditHandler
}

// New builds the gin engine with middleware and all routes registered
func New(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))

	corsConfig := middleware.DefaultCORSConfig()
	if len(deps.Config.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = deps.Config.HTTP.CORSAllowOrigins
	}
	if len(deps.Config.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = deps.Config.HTTP.CORSAllowMethods
	}
	if len(deps.Config.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = deps.Config.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	deps.AuthHandler.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(deps.JWTService))
	for _, registrar := range []RouteRegistrar{
		deps.AuthHandler,
		deps.RegisterHandler,
		deps.AuditHandler,
	} {
		registrar.RegisterRoutes(protected)
	}

	return engine
}
