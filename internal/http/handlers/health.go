package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carebridge/carebridge-backend/internal/platform/neo4jdb"
)

type HealthHandler struct {
	graph *neo4jdb.Client
}

func NewHealthHandler(graph *neo4jdb.Client) *HealthHandler {
	return &HealthHandler{graph: graph}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// ReadyCheck verifies the graph store is reachable.
func (h *HealthHandler) ReadyCheck(c *gin.Context) {
	if h.graph != nil {
		if err := h.graph.Driver.VerifyConnectivity(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
