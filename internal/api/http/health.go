package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nextops/aws-services/internal/graph"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Graph     string    `json:"graph,omitempty"`
	Nodes     *int      `json:"nodes,omitempty"`
}

type HealthHandler struct {
	serviceName  string
	version      string
	store        graph.Store
	probeTimeout time.Duration
}

func NewHealthHandler(serviceName, version string, store graph.Store) *HealthHandler {
	return &HealthHandler{
		serviceName:  serviceName,
		version:      version,
		store:        store,
		probeTimeout: 1 * time.Second,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	graphStatus := "disabled"
	var nodes *int
	if h.store != nil {
		probeCtx, cancel := context.WithTimeout(c.Request.Context(), h.probeTimeout)
		defer cancel()

		if err := h.store.Probe(probeCtx); err != nil {
			graphStatus = "down"
		} else {
			graphStatus = "up"
			if counter, ok := h.store.(graph.Counter); ok {
				if n, err := counter.CountNodes(probeCtx, graph.ServiceLabel); err == nil {
					nodes = &n
				}
			}
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Graph:     graphStatus,
		Nodes:     nodes,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
