package models

import (
	"encoding/json"
	"time"
)

type SavedFilter struct {
	ID          int             `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	PageContext string          `json:"page_context" db:"page_context"`
	FilterData  json.RawMessage `json:"filter_data" db:"filter_data"`
	SortOrder   int             `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type SavedFilterRequest struct {
	Name        string          `json:"name" binding:"required"`
	PageContext string          `json:"page_context" binding:"required"`
	FilterData  json.RawMessage `json:"filter_data" binding:"required"`
}

type SavedFilterPatch struct {
	Name       *string         `json:"name"`
	SortOrder  *int            `json:"sort_order"`
	FilterData json.RawMessage `json:"filter_data"`
}

func (p SavedFilterPatch) HasChanges() bool {
	return p.Name != nil || p.SortOrder != nil || len(p.FilterData) > 0
}

type FilterOrder struct {
	ID        int `json:"id" binding:"required"`
	SortOrder int `json:"sort_order"`
}
