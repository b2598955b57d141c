package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nextops/aws-services/internal/api/http/middleware"
	"github.com/nextops/aws-services/internal/logging"
	"github.com/nextops/aws-services/internal/workflow"
)

// SyncRunner is the workflow surface exposed over HTTP.
type SyncRunner interface {
	RunSync(ctx context.Context) (workflow.SyncReport, error)
	ListServices(ctx context.Context) ([]string, error)
}

// CatalogRefresher drops a cached catalog listing.
type CatalogRefresher interface {
	Invalidate(ctx context.Context) error
}

type SyncResponse struct {
	RunID      string    `json:"run_id"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Aborted    bool      `json:"aborted"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Summary    string    `json:"summary"`
}

type ServicesResponse struct {
	Services []string `json:"services"`
	Count    int      `json:"count"`
}

type SyncHandler struct {
	runner    SyncRunner
	refresher CatalogRefresher
	logger    *logging.Logger
	mu        sync.Mutex
}

// NewSyncHandler builds the handler; refresher may be nil when no cache is configured.
func NewSyncHandler(runner SyncRunner, refresher CatalogRefresher, logger *logging.Logger) *SyncHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SyncHandler{
		runner:    runner,
		refresher: refresher,
		logger:    logger,
	}
}

func (h *SyncHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/services", h.ListServices)
	r.POST("/sync", h.TriggerSync)
}

func (h *SyncHandler) ListServices(c *gin.Context) {
	names, err := h.runner.ListServices(c.Request.Context())
	if err != nil {
		h.logger.Error("http.list_services", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ServicesResponse{Services: names, Count: len(names)})
}

// TriggerSync runs one sync. ?refresh=true drops the cached catalog first.
// Only one HTTP-triggered run executes at a time.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	if !h.mu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "sync already running"})
		return
	}
	defer h.mu.Unlock()

	ctx := c.Request.Context()
	h.logger.Infof("http.sync", "sync requested request_id=%s", middleware.GetRequestID(ctx))
	if c.Query("refresh") == "true" && h.refresher != nil {
		if err := h.refresher.Invalidate(ctx); err != nil {
			h.logger.Warnf("http.sync", "cache invalidate failed error=%q", err.Error())
		}
	}

	report, err := h.runner.RunSync(ctx)
	resp := toSyncResponse(report)
	switch {
	case errors.Is(err, workflow.ErrNotConnected):
		c.JSON(http.StatusServiceUnavailable, resp)
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "run_id": report.RunID})
	default:
		c.JSON(http.StatusOK, resp)
	}
}

func toSyncResponse(r workflow.SyncReport) SyncResponse {
	return SyncResponse{
		RunID:      r.RunID,
		Total:      r.Total,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed(),
		Aborted:    r.Aborted,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Summary:    r.String(),
	}
}
