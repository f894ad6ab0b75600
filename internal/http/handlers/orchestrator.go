package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carebridge/carebridge-backend/internal/http/response"
	"github.com/carebridge/carebridge-backend/internal/orchestrator"
	"github.com/carebridge/carebridge-backend/internal/platform/logger"
	"github.com/carebridge/carebridge-backend/internal/types"
)

type OrchestratorHandler struct {
	agent    *orchestrator.Agent
	registry map[string]orchestrator.ToolFunc
	log      *logger.Logger
}

func NewOrchestratorHandler(log *logger.Logger, agent *orchestrator.Agent, registry map[string]orchestrator.ToolFunc) *OrchestratorHandler {
	return &OrchestratorHandler{agent: agent, registry: registry, log: log}
}

type queryRequest struct {
	Query          string `json:"query" binding:"required"`
	UserID         string `json:"user_id" binding:"required"`
	UserRole       string `json:"user_role"`
	HealthRecordID string `json:"health_record_id"`
	TargetLanguage string `json:"target_language"`
}

// Query is the pipeline entry point: POST /api/orchestrator/query.
func (h *OrchestratorHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return
	}

	role, err := parseRole(req.UserRole)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return
	}

	resp := h.agent.Route(c.Request.Context(), types.AgentQuery{
		Query:          req.Query,
		UserID:         req.UserID,
		UserRole:       role,
		HealthRecordID: req.HealthRecordID,
		TargetLanguage: req.TargetLanguage,
	})
	response.RespondOK(c, resp)
}

// Tools lists the registered tool names: GET /api/orchestrator/tools.
func (h *OrchestratorHandler) Tools(c *gin.Context) {
	response.RespondOK(c, gin.H{"tools": orchestrator.Tools(h.registry)})
}

// Status reports pipeline availability: GET /api/orchestrator/status.
func (h *OrchestratorHandler) Status(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"status":     "ready",
		"tool_count": len(h.registry),
	})
}

func parseRole(raw string) (types.UserRole, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(types.RolePatient):
		return types.RolePatient, nil
	case string(types.RoleDoctor):
		return types.RoleDoctor, nil
	default:
		return "", fmt.Errorf("unknown user role: %s", raw)
	}
}
