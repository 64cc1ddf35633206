package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID           int            `json:"id" db:"id"`
	ResourceID   int            `json:"resource_id" db:"resource_id"`
	ResourceType string         `json:"resource_type" db:"resource_type"`
	Action       string         `json:"action" db:"action"` // create, update, delete, finalize, cancel, import
	DataRaw      []byte         `json:"-" db:"data"`
	Data         map[string]any `json:"data" db:"-"`
	Actor        string         `json:"actor,omitempty" db:"actor"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

func (a *AuditLog) LoadFromDB() {
	if len(a.DataRaw) > 0 {
		_ = json.Unmarshal(a.DataRaw, &a.Data)
	}
}

// ImportBatch is the audit subject of a spreadsheet import.
type ImportBatch struct {
	Table string
}

func (b ImportBatch) CreateLogView() AuditLog {
	return AuditLog{ResourceType: "import_" + b.Table}
}
