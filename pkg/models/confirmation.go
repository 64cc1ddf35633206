package models

import "time"

type ConfirmedAsset struct {
	ID          int       `json:"id" db:"id"`
	AssetNumber string    `json:"asset_number" db:"asset_number"`
	CjID        string    `json:"cj_id" db:"cj_id"`
	ConfirmedAt time.Time `json:"confirmed_at" db:"confirmed_at"`
}

type ConfirmedReplacement struct {
	ID          int       `json:"id" db:"id"`
	AssetNumber string    `json:"asset_number" db:"asset_number"`
	ConfirmedAt time.Time `json:"confirmed_at" db:"confirmed_at"`
}
