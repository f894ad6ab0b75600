package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
)

type AuditEvent struct {
	ID           string
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	Details      map[string]any
}

// AuditLogger records who asked what. Durable audit storage lives
// outside this service; this interface is the narrow contract the
// query path writes through.
type AuditLogger interface {
	Log(ctx context.Context, event AuditEvent)
}

type logAuditLogger struct {
	log *logger.Logger
}

func NewLogAuditLogger(log *logger.Logger) AuditLogger {
	return &logAuditLogger{log: log.With("service", "AuditLogger")}
}

func (a *logAuditLogger) Log(_ context.Context, event AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	a.log.Info("audit",
		"audit_id", event.ID,
		"user_id", event.UserID,
		"action", event.Action,
		"resource_type", event.ResourceType,
		"resource_id", event.ResourceID,
		"details", event.Details,
	)
}
