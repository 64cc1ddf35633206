package models

import "time"

type Trade struct {
	ID          int       `json:"trade_id" db:"trade_id"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	WorkType    string    `json:"work_type" db:"work_type"`
	AssetNumber string    `json:"asset_number" db:"asset_number"`
	CjID        string    `json:"cj_id" db:"cj_id"`
	ExUser      string    `json:"ex_user" db:"ex_user"`
	AssetState  string    `json:"asset_state" db:"asset_state"`
	AssetInUser string    `json:"asset_in_user" db:"asset_in_user"`
	Replacement string    `json:"replacement" db:"replacement"`
	Memo        string    `json:"memo" db:"memo"`
}

// TradeView is a trade joined with the asset model and both holders.
type TradeView struct {
	Trade
	Model      string `json:"model" db:"model"`
	Name       string `json:"name" db:"name"`
	Part       string `json:"part" db:"part"`
	ExUserName string `json:"ex_user_name" db:"ex_user_name"`
	ExUserPart string `json:"ex_user_part" db:"ex_user_part"`
}

// TradeRequest registers one transition. asset_state and asset_in_user sent
// by clients are ignored; the snapshot is taken from the locked row.
type TradeRequest struct {
	WorkType    string `json:"work_type" binding:"required"`
	AssetNumber string `json:"asset_number" binding:"required"`
	CjID        string `json:"cj_id"`
	Replacement string `json:"replacement"`
	DayOfStart  *Date  `json:"day_of_start"`
	DayOfEnd    *Date  `json:"day_of_end"`
	Memo        string `json:"memo"`
}

// TradeUpdate edits ledger metadata. Snapshot columns are not editable.
type TradeUpdate struct {
	WorkType  *string    `json:"work_type"`
	CjID      *string    `json:"cj_id"`
	ExUser    *string    `json:"ex_user"`
	Memo      *string    `json:"memo"`
	Timestamp *time.Time `json:"timestamp"`
}

func (u TradeUpdate) HasChanges() bool {
	return u.WorkType != nil || u.CjID != nil || u.ExUser != nil || u.Memo != nil || u.Timestamp != nil
}

// HistoryEntry is one row of an asset's holder history.
type HistoryEntry struct {
	TradeID     int       `json:"trade_id" db:"trade_id"`
	AssetNumber string    `json:"asset_number" db:"asset_number"`
	WorkType    string    `json:"work_type" db:"work_type"`
	CjID        string    `json:"cj_id" db:"cj_id"`
	UserName    string    `json:"user_name" db:"user_name"`
	ExUser      string    `json:"-" db:"ex_user"`
	ExUserName  string    `json:"-" db:"ex_user_name"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Synthetic   bool      `json:"synthetic,omitempty" db:"-"`
}

// CurrentHolder is the holder recorded by the latest trade of an asset.
type CurrentHolder struct {
	AssetNumber string    `json:"asset_number" db:"asset_number"`
	CjID        string    `json:"cj_id" db:"cj_id"`
	UserName    string    `json:"user_name" db:"user_name"`
	WorkType    string    `json:"work_type" db:"work_type"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}
