package trades

import (
	"time"

	"assetdb/pkg/metadata"
	"assetdb/pkg/models"
)

const (
	originPreviousHolder = "기존 보유자"
	originRegistration   = "자산 등록"
)

// withOrigin prepends an entry for whoever held the asset before the first
// recorded trade: a real user, or the stock account for registrations.
func withOrigin(entries []models.HistoryEntry) []models.HistoryEntry {
	for i := range entries {
		entries[i].UserName = holderName(entries[i].CjID, entries[i].UserName)
	}
	if len(entries) == 0 {
		return entries
	}

	first := entries[0]
	origin := models.HistoryEntry{
		AssetNumber: first.AssetNumber,
		CjID:        first.ExUser,
		Timestamp:   first.Timestamp.Add(-time.Second),
		Synthetic:   true,
	}

	switch metadata.KindOf(first.ExUser) {
	case metadata.HolderKindUser:
		origin.WorkType = originPreviousHolder
		origin.UserName = holderName(first.ExUser, first.ExUserName)
	case metadata.HolderKindStock:
		origin.WorkType = originRegistration
		origin.UserName = metadata.DisplayName(metadata.HolderStock, "")
	default:
		return entries
	}

	return append([]models.HistoryEntry{origin}, entries...)
}

func holderName(cjID, name string) string {
	if name != "" {
		return name
	}
	if metadata.IsPseudoHolder(cjID) {
		return metadata.DisplayName(cjID, "")
	}
	return cjID
}
