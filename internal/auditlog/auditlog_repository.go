package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"assetdb/internal/repository"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type AuditLogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *AuditLogRepository {
	return &AuditLogRepository{repository: r}
}

func (r *AuditLogRepository) PersistLog(ctx context.Context, entry models.AuditLog, data interface{}) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log data: %w", err)
	}

	record := goqu.Record{
		"resource_id":   entry.ResourceID,
		"resource_type": entry.ResourceType,
		"action":        entry.Action,
		"data":          string(dataJSON),
	}
	if entry.Actor != "" {
		record["actor"] = entry.Actor
	}

	_, err = r.repository.GoquDBWrapper.Insert("audit_logs").
		Rows(record).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

func (r *AuditLogRepository) GetResourceLog(ctx context.Context, id int, resourceType string) ([]models.AuditLog, error) {
	query := r.repository.GoquDBWrapper.
		From(goqu.T("audit_logs").As("a")).
		Select(
			goqu.I("a.id").As("id"),
			goqu.I("a.resource_id").As("resource_id"),
			goqu.I("a.resource_type").As("resource_type"),
			goqu.I("a.action").As("action"),
			goqu.COALESCE(goqu.I("a.data"), goqu.L("'{}'::jsonb")).As("data"),
			goqu.COALESCE(goqu.I("a.actor"), "").As("actor"),
			goqu.I("a.created_at").As("created_at"),
		).
		Where(goqu.Ex{
			"a.resource_id":   id,
			"a.resource_type": resourceType,
		}).
		Order(goqu.I("a.created_at").Desc())

	logs := []models.AuditLog{}
	if err := query.Executor().ScanStructsContext(ctx, &logs); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	for i := range logs {
		logs[i].LoadFromDB()
	}

	return logs, nil
}
