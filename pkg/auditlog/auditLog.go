package auditlog

import (
	"context"
	"time"

	"assetdb/pkg/models"

	"go.uber.org/zap"
)

type Persister interface {
	PersistLog(ctx context.Context, entry models.AuditLog, data interface{}) error
}

type Auditable interface {
	CreateLogView() models.AuditLog
}

type Auditlog struct {
	r   Persister
	log *zap.Logger
}

func NewAuditLog(persister Persister, log *zap.Logger) *Auditlog {
	return &Auditlog{r: persister, log: log}
}

// Log writes an audit entry. It is meant to run in its own goroutine, so it
// uses a fresh context and only logs failures.
func (a *Auditlog) Log(action, actor string, data map[string]interface{}, item Auditable) {
	entry := item.CreateLogView()
	entry.Action = action
	entry.Actor = actor

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.r.PersistLog(ctx, entry, data); err != nil {
		a.log.Warn("unable to create audit log entry",
			zap.String("resource_type", entry.ResourceType),
			zap.Int("resource_id", entry.ResourceID),
			zap.Error(err))
		return
	}

	a.log.Debug("created audit log entry",
		zap.String("resource_type", entry.ResourceType),
		zap.Int("resource_id", entry.ResourceID),
		zap.String("action", action))
}
