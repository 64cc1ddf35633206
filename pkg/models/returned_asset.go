package models

import "time"

type ReturnedAsset struct {
	ID            int       `json:"return_id" db:"return_id"`
	AssetNumber   string    `json:"asset_number" db:"asset_number"`
	ReturnReason  string    `json:"return_reason" db:"return_reason"`
	Model         string    `json:"model" db:"model"`
	SerialNumber  string    `json:"serial_number" db:"serial_number"`
	ReturnType    string    `json:"return_type" db:"return_type"`
	EndDate       *Date     `json:"end_date" db:"end_date"`
	UserID        string    `json:"user_id" db:"user_id"`
	UserName      string    `json:"user_name" db:"user_name"`
	Department    string    `json:"department" db:"department"`
	HandoverDate  *Date     `json:"handover_date" db:"handover_date"`
	ReleaseStatus bool      `json:"release_status" db:"release_status"`
	ItRoomStock   bool      `json:"it_room_stock" db:"it_room_stock"`
	LowFormat     bool      `json:"low_format" db:"low_format"`
	ItReturn      bool      `json:"it_return" db:"it_return"`
	MailReturn    bool      `json:"mail_return" db:"mail_return"`
	ActualReturn  bool      `json:"actual_return" db:"actual_return"`
	Complete      bool      `json:"complete" db:"complete"`
	Remarks       string    `json:"remarks" db:"remarks"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

func (r *ReturnedAsset) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   r.ID,
		ResourceType: "returned_asset",
	}
}

type ReturnedAssetRequest struct {
	AssetNumber  string `json:"asset_number" binding:"required"`
	ReturnReason string `json:"return_reason"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	ReturnType   string `json:"return_type"`
	EndDate      *Date  `json:"end_date"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	Department   string `json:"department"`
	HandoverDate *Date  `json:"handover_date"`
	Remarks      string `json:"remarks"`
}

// ReturnedAssetUpdate edits the return checklist. Nil fields are left untouched.
type ReturnedAssetUpdate struct {
	ReturnReason  *string `json:"return_reason"`
	ReturnType    *string `json:"return_type"`
	EndDate       *Date   `json:"end_date"`
	UserName      *string `json:"user_name"`
	Department    *string `json:"department"`
	HandoverDate  *Date   `json:"handover_date"`
	ReleaseStatus *bool   `json:"release_status"`
	ItRoomStock   *bool   `json:"it_room_stock"`
	LowFormat     *bool   `json:"low_format"`
	ItReturn      *bool   `json:"it_return"`
	MailReturn    *bool   `json:"mail_return"`
	ActualReturn  *bool   `json:"actual_return"`
	Complete      *bool   `json:"complete"`
	Remarks       *string `json:"remarks"`
}
