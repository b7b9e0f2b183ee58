package warden

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/lodestone/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (a *Admin) registerRoutes() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(a.server.Status().StartedAt).String(),
			"service": a.cfg.ServerID,
			"version": "0.0.1",
		})
	})

	a.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(a.server.Status().StartedAt).String(),
			"service": a.cfg.ServerID,
			"version": "0.0.1",
		})
	})

	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	guarded := a.router.Group("/")
	if a.cfg.AdminAuthToken != "" {
		guarded.Use(auth.BearerMiddleware(auth.StaticToken{Token: a.cfg.AdminAuthToken}))
	}

	guarded.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.server.Status())
	})

	guarded.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"sessions": a.server.Sessions(),
		})
	})

	guarded.GET("/events", func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}
		c.JSON(http.StatusOK, gin.H{
			"events": a.server.Events().Recent(limit),
		})
	})

	guarded.GET("/watch", a.watchHandler)
}
