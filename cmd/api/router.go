package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookstore-api/internal/shared/middleware"
	"bookstore-api/internal/shared/response"
	"bookstore-api/pkg/container"
	"bookstore-api/pkg/logger"
)

const (
	readinessTimeout        = 2 * time.Second
	storeUnavailableMessage = "Store is unavailable"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
	)

	router.GET("/", welcomeHandler(c))
	router.GET("/health", healthCheckHandler(c))
	router.GET("/health/ready", readinessHandler(c))

	api := router.Group("/api")
	{
		c.BookHandler.RegisterRoutes(api)
		c.AuthorHandler.RegisterRoutes(api)
		c.OrderHandler.RegisterRoutes(api)
	}

	router.NoRoute(response.NotFoundRoute)

	return router
}

// ========================================
// HEALTH & INFO
// ========================================

func welcomeHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message":     "Welcome to " + c.Config.App.Name,
			"version":     c.Config.App.Version,
			"description": "A RESTful API for managing books, authors, and orders",
			"endpoints": gin.H{
				"books":   "/api/books",
				"authors": "/api/authors",
				"orders":  "/api/orders",
				"health":  "/health",
			},
			"documentation": "See README.md for detailed API documentation",
		})
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":      "OK",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"uptime":      c.Uptime().Seconds(),
			"environment": c.Config.App.Environment,
		})
	}
}

// readinessHandler pings the configured store.
func readinessHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), readinessTimeout)
		defer cancel()

		if err := c.HealthCheck(pingCtx); err != nil {
			logger.Error("Readiness check failed", err)
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "UNAVAILABLE",
				"store":  c.Config.Store.Driver,
				"error":  storeUnavailableMessage,
			})
			return
		}

		body := gin.H{
			"status": "OK",
			"store":  c.Config.Store.Driver,
		}
		if c.DB != nil {
			if stats, err := c.DB.Stats(); err == nil {
				body["pool"] = stats
			}
		}
		ctx.JSON(http.StatusOK, body)
	}
}
