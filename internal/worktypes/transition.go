package worktypes

import (
	"fmt"
	"slices"
	"strings"

	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/metadata"
	"assetdb/pkg/models"
)

// Snapshot is the asset row as observed before a transition.
type Snapshot struct {
	AssetNumber string
	State       string
	InUser      string
}

// Transition is the fully resolved outcome of one trade request.
type Transition struct {
	WorkType    *WorkType
	Before      Snapshot
	CjID        string
	ExUser      string
	NewState    string
	NewInUser   string
	Replacement string
	DayOfStart  *models.Date
	DayOfEnd    *models.Date
}

// Mutates reports whether the asset row has to be updated.
func (t Transition) Mutates() bool {
	return t.WorkType.Mutates()
}

// Validate checks a request against the current asset state. Assets on hold
// skip state and holder checks.
func (c *Catalogue) Validate(workType string, asset Snapshot, cjID string) error {
	wt, ok := c.Lookup(workType)
	if !ok {
		return custom_error.NewValidationError("유효하지 않은 작업 유형입니다: %s", workType)
	}
	return wt.validate(asset, cjID)
}

func (w *WorkType) validate(asset Snapshot, cjID string) error {
	hold := metadata.IsHold(asset.State) && !w.StrictState

	if !hold {
		switch w.HolderCheck {
		case HolderCheckStock:
			if asset.InUser != metadata.HolderStock {
				return custom_error.NewValidationError("보유자가 %q입니다. %q여야 합니다.", asset.InUser, metadata.HolderStock)
			}
		case HolderCheckNotStock:
			if asset.InUser == metadata.HolderStock {
				return custom_error.NewValidationError("이미 회사 입고 상태(%s)입니다.", metadata.HolderStock)
			}
		}

		if len(w.AllowedStates) > 0 && !slices.Contains(w.AllowedStates, asset.State) {
			return custom_error.NewValidationError("상태가 %q입니다. %s 상태만 가능합니다.", asset.State, quoteAll(w.AllowedStates))
		}
	}

	if w.RequiresUser && cjID == "" {
		return custom_error.NewValidationError("사용자(CJ ID)를 선택해주세요.")
	}
	if w.DistinctUser && asset.InUser != "" && cjID == asset.InUser {
		return custom_error.NewValidationError("현재 사용자와 다른 사용자를 선택해야 합니다.")
	}

	return nil
}

// Plan validates req against asset and resolves the resulting row.
func (c *Catalogue) Plan(req models.TradeRequest, asset Snapshot) (Transition, error) {
	wt, ok := c.Lookup(req.WorkType)
	if !ok {
		return Transition{}, custom_error.NewValidationError("유효하지 않은 작업 유형입니다: %s", req.WorkType)
	}

	cjID := ResolveTarget(wt, asset, req.CjID)
	if err := wt.validate(asset, cjID); err != nil {
		return Transition{}, err
	}
	if wt.RequiresReplacement && strings.TrimSpace(req.Replacement) == "" {
		return Transition{}, custom_error.NewValidationError("교체 자산번호를 입력해주세요.")
	}
	if wt.RequiresDates && (req.DayOfStart == nil || req.DayOfEnd == nil) {
		return Transition{}, custom_error.NewValidationError("재계약 시작일과 종료일을 입력해주세요.")
	}

	t := Transition{
		WorkType:    wt,
		Before:      asset,
		CjID:        cjID,
		ExUser:      asset.InUser,
		NewState:    asset.State,
		NewInUser:   asset.InUser,
		Replacement: strings.TrimSpace(req.Replacement),
	}
	if wt.RequiresDates {
		t.DayOfStart, t.DayOfEnd = req.DayOfStart, req.DayOfEnd
	}

	if wt.Effect != nil {
		t.NewState = wt.Effect.State
		switch wt.Effect.Holder {
		case HolderTarget:
			t.NewInUser = cjID
		case HolderStock:
			t.NewInUser = metadata.HolderStock
		case HolderVendor:
			t.NewInUser = metadata.HolderVendor
		}
	}

	return t, nil
}

// ResolveTarget returns the holder recorded on the trade: the fixed account of
// the work type, the current holder for no-change types, or the requested id.
func ResolveTarget(wt *WorkType, asset Snapshot, requested string) string {
	switch wt.FixedCjID {
	case "":
		return strings.TrimSpace(requested)
	case FixedNoChange:
		return asset.InUser
	default:
		return wt.FixedCjID
	}
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
