package assets

import (
	"strings"

	"assetdb/internal/worktypes"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/metadata"
	"assetdb/pkg/models"

	"github.com/shopspring/decimal"
)

const (
	defaultBulkWorkType = "신규-계약"
	reContractWorkType  = "신규-재계약"
)

// bulkPlan is the outcome of one bulk row: the asset to write and the trade
// recording it. New assets always get a trade; re-contracts only when holder
// or state changes.
type bulkPlan struct {
	asset  models.Asset
	update bool
	trade  *models.Trade
}

// planBulkItem resolves one row against the existing asset with the same
// number, or nil for a new one.
func planBulkItem(item models.BulkAssetItem, defaultWorkType string, existing *models.Asset, catalogue *worktypes.Catalogue) (bulkPlan, error) {
	number := strings.TrimSpace(item.AssetNumber)
	if number == "" || strings.TrimSpace(item.Category) == "" || strings.TrimSpace(item.Model) == "" {
		label := number
		if label == "" {
			label = "UNKNOWN"
		}
		return bulkPlan{}, custom_error.NewValidationError("필수 필드 누락: %s", label)
	}

	workType := firstNonEmpty(item.WorkType, defaultWorkType, defaultBulkWorkType)
	if _, ok := catalogue.Lookup(workType); !ok {
		return bulkPlan{}, custom_error.NewValidationError("유효하지 않은 작업 유형입니다: %s", workType)
	}
	if existing != nil && workType != reContractWorkType {
		return bulkPlan{}, custom_error.NewValidationError("이미 존재하는 자산번호: %s", number)
	}

	inUser := firstNonEmpty(item.InUser, metadata.HolderStock)
	state := metadata.StatusUseable
	if inUser != metadata.HolderStock {
		state = metadata.StatusWait
		if strings.TrimSpace(item.State) != "" {
			parsed, err := metadata.NewStatus(item.State)
			if err != nil {
				return bulkPlan{}, custom_error.NewValidationError("유효하지 않은 상태: %s (%s)", item.State, number)
			}
			state = parsed
		}
	}

	asset := models.Asset{
		AssetNumber:  number,
		Category:     strings.TrimSpace(item.Category),
		Model:        strings.TrimSpace(item.Model),
		SerialNumber: strings.TrimSpace(item.SerialNumber),
		State:        state.String(),
		InUser:       inUser,
		DayOfStart:   models.ParseDatePtr(item.DayOfStart),
		DayOfEnd:     models.ParseDatePtr(item.DayOfEnd),
		Memo:         item.Memo,
	}
	if item.UnitPrice.Invalid() {
		return bulkPlan{}, custom_error.NewValidationError("유효하지 않은 단가: %s (%s)", item.UnitPrice.Raw, number)
	}
	if !item.UnitPrice.Value.IsZero() {
		asset.UnitPrice = decimal.NewNullDecimal(item.UnitPrice.Value)
	}

	before := worktypes.Snapshot{AssetNumber: number, State: metadata.StatusWait.String(), InUser: metadata.HolderVendor}
	if existing != nil {
		asset.ID = existing.ID
		before.State, before.InUser = existing.State, existing.InUser
	}

	plan := bulkPlan{asset: asset, update: existing != nil}
	if existing == nil || before.InUser != asset.InUser || before.State != asset.State {
		plan.trade = &models.Trade{
			WorkType:    workType,
			AssetNumber: number,
			CjID:        asset.InUser,
			ExUser:      previousHolder(before.InUser),
			AssetState:  before.State,
			AssetInUser: before.InUser,
			Memo:        item.Memo,
		}
	}

	return plan, nil
}

// previousHolder is the ex_user of a registration trade. Stock is recorded as
// coming from the vendor.
func previousHolder(inUser string) string {
	if inUser == "" || inUser == metadata.HolderStock {
		return metadata.HolderVendor
	}
	return inUser
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
