package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/crimi5361/IIPEA-BACKEND/internal/middleware"
)

// SetupRoutes wires the middleware chain and every route group onto the
// engine.
func SetupRoutes(r *gin.Engine, auth *middleware.Auth, h *Handlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authRequired := r.Group("/")
	authRequired.Use(auth.Handler())
	{
		RegisterAPIRoutes(authRequired, h)
	}
}
