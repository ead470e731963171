// Package http is the HTTP transport for the cube engine: a thin
// gin layer translating JSON requests into domain.RawQuery/domain.Definition
// values and domain.Result/error back into the shared response envelope. It
// carries no domain logic of its own.
package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cubeengine/internal/config"
	domain "cubeengine/internal/core/domain/cube"
	"cubeengine/internal/observability/metrics"
	"cubeengine/pkg/ulid"
)

// requestID stamps each request with a ULID for the response envelope.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("request_id", ulid.New().String())
		c.Next()
	}
}

// NewRouter builds the gin engine with CORS, the cube routes, and the
// Prometheus /metrics endpoint mounted.
func NewRouter(cfg *config.Config, engine domain.Engine) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	if cfg.Server.EnableCORS {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", metrics.Handler())

	h := NewHandler(engine)
	router.POST("/cubes", h.RegisterCube)
	router.GET("/cubes", h.ListCubes)
	router.POST("/cubes/:name/invalidate", h.InvalidateCube)
	router.POST("/query", h.Query)

	return router
}
