package main

import (
	"github.com/eduequip/eduequip/internal/handlers"
	"github.com/eduequip/eduequip/internal/middleware"
	"github.com/eduequip/eduequip/internal/models"
	"github.com/eduequip/eduequip/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "eduequip"})
	})

	recordHandler := handlers.NewRecordHandler(models.GetDB())
	r.GET("/records", recordHandler.List)

	// Writes share a per-IP limiter; reads stay unthrottled for page loads.
	writes := r.Group("", middleware.NewRateLimiter(20, 40).Middleware())
	{
		writes.POST("/records", recordHandler.Create)
		writes.PUT("/records", recordHandler.Update)
		writes.DELETE("/records", recordHandler.Delete)
	}
}
