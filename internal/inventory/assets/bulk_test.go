package assets

import (
	"testing"

	"assetdb/internal/worktypes"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanBulkItemNewAsset(t *testing.T) {
	catalogue := worktypes.Default()

	tests := []struct {
		name      string
		item      models.BulkAssetItem
		wantState string
		wantUser  string
		wantTrade *models.Trade
	}{
		{
			name:      "stock asset becomes useable",
			item:      models.BulkAssetItem{AssetNumber: "NB-001", Category: "노트북", Model: "gram"},
			wantState: "useable",
			wantUser:  "cjenc_inno",
			wantTrade: &models.Trade{
				WorkType:    "신규-계약",
				AssetNumber: "NB-001",
				CjID:        "cjenc_inno",
				ExUser:      "aj_rent",
				AssetState:  "wait",
				AssetInUser: "aj_rent",
			},
		},
		{
			name:      "user asset defaults to wait",
			item:      models.BulkAssetItem{AssetNumber: "NB-002", Category: "노트북", Model: "gram", InUser: "kim01", WorkType: "신규-기타"},
			wantState: "wait",
			wantUser:  "kim01",
			wantTrade: &models.Trade{
				WorkType:    "신규-기타",
				AssetNumber: "NB-002",
				CjID:        "kim01",
				ExUser:      "aj_rent",
				AssetState:  "wait",
				AssetInUser: "aj_rent",
			},
		},
		{
			name:      "vendor held wait asset still records its registration",
			item:      models.BulkAssetItem{AssetNumber: "NB-003", Category: "노트북", Model: "gram", InUser: "aj_rent"},
			wantState: "wait",
			wantUser:  "aj_rent",
			wantTrade: &models.Trade{
				WorkType:    "신규-계약",
				AssetNumber: "NB-003",
				CjID:        "aj_rent",
				ExUser:      "aj_rent",
				AssetState:  "wait",
				AssetInUser: "aj_rent",
			},
		},
		{
			name:      "explicit state is kept for users",
			item:      models.BulkAssetItem{AssetNumber: "NB-004", Category: "노트북", Model: "gram", InUser: "kim01", State: "RENT"},
			wantState: "rent",
			wantUser:  "kim01",
			wantTrade: &models.Trade{
				WorkType:    "신규-계약",
				AssetNumber: "NB-004",
				CjID:        "kim01",
				ExUser:      "aj_rent",
				AssetState:  "wait",
				AssetInUser: "aj_rent",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planBulkItem(tt.item, "", nil, catalogue)
			require.NoError(t, err)

			assert.False(t, plan.update)
			assert.Equal(t, tt.wantState, plan.asset.State)
			assert.Equal(t, tt.wantUser, plan.asset.InUser)
			assert.Equal(t, tt.wantTrade, plan.trade)
		})
	}
}

func TestPlanBulkItemUsesDefaultWorkType(t *testing.T) {
	item := models.BulkAssetItem{AssetNumber: "NB-001", Category: "노트북", Model: "gram"}

	plan, err := planBulkItem(item, "신규-고장교체", nil, worktypes.Default())

	require.NoError(t, err)
	require.NotNil(t, plan.trade)
	assert.Equal(t, "신규-고장교체", plan.trade.WorkType)
}

func TestPlanBulkItemReContractWithoutChangeRecordsNoTrade(t *testing.T) {
	existing := &models.Asset{ID: 7, AssetNumber: "NB-001", State: "useable", InUser: "cjenc_inno"}
	item := models.BulkAssetItem{AssetNumber: "NB-001", Category: "노트북", Model: "gram", WorkType: "신규-재계약"}

	plan, err := planBulkItem(item, "", existing, worktypes.Default())

	require.NoError(t, err)
	assert.True(t, plan.update)
	assert.Nil(t, plan.trade)
}

func TestPlanBulkItemReContract(t *testing.T) {
	existing := &models.Asset{ID: 42, AssetNumber: "NB-001", State: "termination", InUser: "aj_rent"}
	item := models.BulkAssetItem{
		AssetNumber: "NB-001",
		Category:    "노트북",
		Model:       "gram",
		DayOfStart:  "2025-01-01",
		DayOfEnd:    "2027/12/31",
		UnitPrice:   models.NewPrice(decimal.RequireFromString("35000")),
		WorkType:    "신규-재계약",
	}

	plan, err := planBulkItem(item, "", existing, worktypes.Default())

	require.NoError(t, err)
	assert.True(t, plan.update)
	assert.Equal(t, 42, plan.asset.ID)
	assert.Equal(t, "useable", plan.asset.State)
	assert.Equal(t, "2027-12-31", plan.asset.DayOfEnd.String())
	assert.True(t, plan.asset.UnitPrice.Valid)
	require.NotNil(t, plan.trade)
	assert.Equal(t, "termination", plan.trade.AssetState)
	assert.Equal(t, "aj_rent", plan.trade.ExUser)
}

func TestPlanBulkItemErrors(t *testing.T) {
	existing := &models.Asset{ID: 1, AssetNumber: "NB-001", State: "useable", InUser: "cjenc_inno"}

	tests := []struct {
		name     string
		item     models.BulkAssetItem
		existing *models.Asset
		wantMsg  string
	}{
		{"missing model", models.BulkAssetItem{AssetNumber: "NB-001", Category: "노트북"}, nil, "필수 필드 누락: NB-001"},
		{"missing number", models.BulkAssetItem{Category: "노트북", Model: "gram"}, nil, "필수 필드 누락: UNKNOWN"},
		{"duplicate", models.BulkAssetItem{AssetNumber: "NB-001", Category: "노트북", Model: "gram"}, existing, "이미 존재하는 자산번호: NB-001"},
		{"unknown work type", models.BulkAssetItem{AssetNumber: "NB-009", Category: "노트북", Model: "gram", WorkType: "분실"}, nil, "유효하지 않은 작업 유형입니다: 분실"},
		{"bad state", models.BulkAssetItem{AssetNumber: "NB-009", Category: "노트북", Model: "gram", InUser: "kim01", State: "lost"}, nil, "유효하지 않은 상태: lost (NB-009)"},
		{"bad price", models.BulkAssetItem{AssetNumber: "NB-010", Category: "노트북", Model: "gram", UnitPrice: models.Price{Raw: "미정"}}, nil, "유효하지 않은 단가: 미정 (NB-010)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planBulkItem(tt.item, "", tt.existing, worktypes.Default())

			require.Error(t, err)
			assert.True(t, custom_error.IsValidation(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestPreviousHolder(t *testing.T) {
	assert.Equal(t, "aj_rent", previousHolder(""))
	assert.Equal(t, "aj_rent", previousHolder("cjenc_inno"))
	assert.Equal(t, "kim01", previousHolder("kim01"))
}
