package models

import (
	"github.com/shopspring/decimal"
)

type Asset struct {
	ID            int                 `json:"asset_id" db:"asset_id"`
	AssetNumber   string              `json:"asset_number" db:"asset_number"`
	Category      string              `json:"category" db:"category"`
	Model         string              `json:"model" db:"model"`
	SerialNumber  string              `json:"serial_number" db:"serial_number"`
	State         string              `json:"state" db:"state"`
	InUser        string              `json:"in_user" db:"in_user"`
	DayOfStart    *Date               `json:"day_of_start" db:"day_of_start"`
	DayOfEnd      *Date               `json:"day_of_end" db:"day_of_end"`
	UnitPrice     decimal.NullDecimal `json:"unit_price" db:"unit_price"`
	ContractMonth *int                `json:"contract_month" db:"contract_month"`
	Replacement   string              `json:"replacement" db:"replacement"`
	Memo          string              `json:"memo" db:"memo"`
}

// AssetView is an asset joined with its holder.
type AssetView struct {
	Asset
	UserName string `json:"user_name" db:"user_name"`
	UserPart string `json:"user_part" db:"user_part"`
}

// ReplacementView lists assets pointing at a replacement device.
type ReplacementView struct {
	ID                  int    `json:"asset_id" db:"asset_id"`
	AssetNumber         string `json:"asset_number" db:"asset_number"`
	Replacement         string `json:"replacement" db:"replacement"`
	Model               string `json:"model" db:"model"`
	SerialNumber        string `json:"serial_number" db:"serial_number"`
	ReplacementUserName string `json:"replacement_user_name" db:"replacement_user_name"`
	ReplacementUserPart string `json:"replacement_user_part" db:"replacement_user_part"`
}

func (a *Asset) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   a.ID,
		ResourceType: "asset",
	}
}

// AssetUpdate carries editable columns. Nil fields are left untouched;
// contract_month is derived from the contract dates.
type AssetUpdate struct {
	AssetNumber   string           `json:"asset_number" binding:"required"`
	Category      *string          `json:"category"`
	Model         *string          `json:"model"`
	SerialNumber  *string          `json:"serial_number"`
	State         *string          `json:"state"`
	InUser        *string          `json:"in_user"`
	DayOfStart    *Date            `json:"day_of_start"`
	DayOfEnd      *Date            `json:"day_of_end"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	Replacement   *string          `json:"replacement"`
	Memo          *string          `json:"memo"`
}

// BulkAssetItem is one row of a bulk registration.
type BulkAssetItem struct {
	AssetNumber  string `json:"asset_number"`
	Category     string `json:"category"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	State        string `json:"state"`
	InUser       string `json:"in_user"`
	DayOfStart   string `json:"day_of_start"`
	DayOfEnd     string `json:"day_of_end"`
	UnitPrice    Price  `json:"unit_price"`
	Memo         string `json:"memo"`
	WorkType     string `json:"work_type"`
}

type BulkAssetRequest struct {
	Items           []BulkAssetItem `json:"items" binding:"required,min=1"`
	DefaultWorkType string          `json:"default_work_type"`
}

type BulkAssetResult struct {
	Message string   `json:"message"`
	Results []string `json:"results"`
	Errors  []string `json:"errors"`
}
