package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter wires every endpoint onto a fresh gin engine
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	r.GET("/", h.Index)
	r.GET("/health", h.Health)
	r.POST("/add_url", h.AddURL)
	r.POST("/stop_scraper", h.StopScraper)
	r.GET("/events", h.Events)

	api := r.Group("/api")
	api.GET("/leads", h.Leads)
	api.GET("/errors", h.Errors)
	api.GET("/status", h.Status)

	return r
}

// requestLogger logs each request through logrus
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"client":  c.ClientIP(),
		}).Debug("HTTP request")
	}
}
