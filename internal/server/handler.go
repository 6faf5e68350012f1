package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alvmarrod/lead-weaver/internal/crawler"
	"github.com/alvmarrod/lead-weaver/internal/events"
	"github.com/alvmarrod/lead-weaver/internal/metrics"
	"github.com/alvmarrod/lead-weaver/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultListLimit = 100

// Controller is the crawl control surface: seed injection and stop.
type Controller interface {
	Enqueue(url string)
	Stop()
	Running() bool
	Status() crawler.Status
}

// Reader lists persisted results
type Reader interface {
	ListLeads(limit int) ([]storage.Lead, error)
	ListErrors(limit int) ([]storage.CrawlError, error)
}

// Handler serves the control and observation endpoints
type Handler struct {
	ctrl      Controller
	reader    Reader
	hub       *events.Hub
	tracker   *metrics.Tracker
	heartbeat time.Duration
}

// NewHandler creates a Handler
func NewHandler(ctrl Controller, reader Reader, hub *events.Hub, tracker *metrics.Tracker) *Handler {
	return &Handler{
		ctrl:      ctrl,
		reader:    reader,
		hub:       hub,
		tracker:   tracker,
		heartbeat: 15 * time.Second,
	}
}

type addURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// Index returns every lead (newest first) and every error
func (h *Handler) Index(c *gin.Context) {
	leads, err := h.reader.ListLeads(0)
	if err != nil {
		logrus.Errorf("Failed to list leads: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
		return
	}
	errs, err := h.reader.ListErrors(0)
	if err != nil {
		logrus.Errorf("Failed to list errors: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list errors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": leads, "errors": errs})
}

// AddURL enqueues a seed URL
func (h *Handler) AddURL(c *gin.Context) {
	var req addURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	h.ctrl.Enqueue(req.URL)
	logrus.Infof("Seed URL queued: %s", req.URL)

	c.JSON(http.StatusOK, gin.H{"message": "URL added to the scraping queue."})
}

// StopScraper flips the crawler's running flag off
func (h *Handler) StopScraper(c *gin.Context) {
	h.ctrl.Stop()
	c.JSON(http.StatusOK, gin.H{"message": "Scraper stopped."})
}

// Leads lists persisted leads, newest first
func (h *Handler) Leads(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	leads, err := h.reader.ListLeads(limit)
	if err != nil {
		logrus.Errorf("Failed to list leads: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// Errors lists persisted crawl errors
func (h *Handler) Errors(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	errs, err := h.reader.ListErrors(limit)
	if err != nil {
		logrus.Errorf("Failed to list errors: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list errors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"errors": errs})
}

// Status reports frontier state and crawl metrics
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"crawler":     h.ctrl.Status(),
		"metrics":     h.tracker.GetSnapshot(),
		"subscribers": h.hub.Subscribers(),
	})
}

// Health is a liveness probe
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "running": h.ctrl.Running()})
}

// Events streams live updates as Server-Sent Events until the client leaves
func (h *Handler) Events(c *gin.Context) {
	sub, cancel := h.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			c.SSEvent(ev.Type, ev.Data)
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": ping\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("limit", strconv.Itoa(defaultListLimit))
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, false
	}
	return limit, true
}
