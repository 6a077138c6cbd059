package events

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// AuditLog writes link lifecycle events to a structured log.
type AuditLog struct {
	logger *zap.Logger
}

// NewAuditLog creates an audit log writing to logger.
func NewAuditLog(logger *zap.Logger) *AuditLog {
	return &AuditLog{logger: logger.Named("audit")}
}

// LinkAssigned records a LinkAssigned event. Events without an id or url are rejected
// so the consumer nacks them.
func (a *AuditLog) LinkAssigned(_ context.Context, event *LinkAssigned) error {
	if event.ID == "" || event.URL == "" {
		return errors.New("link assigned event is missing id or url")
	}

	a.logger.Info("link assigned",
		zap.String("event_id", event.EventID),
		zap.String("id", event.ID),
		zap.String("url", event.URL),
		zap.String("shortUrl", event.ShortURL),
		zap.Time("assignedAt", event.AssignedAt),
	)

	return nil
}
