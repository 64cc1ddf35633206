package worktypes

import (
	"testing"

	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/metadata"
	"assetdb/pkg/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []WorkType) []string {
	out := make([]string, 0, len(items))
	for _, wt := range items {
		out = append(out, wt.WorkType)
	}
	return out
}

func TestDefaultCatalogue(t *testing.T) {
	c := Default()
	all := c.All()
	require.Len(t, all, 25)

	categories := map[string]int{}
	for _, wt := range all {
		categories[wt.Category]++
	}
	if diff := cmp.Diff(map[string]int{"신규": 4, "출고": 7, "입고": 9, "반납": 5}, categories); diff != "" {
		t.Errorf("category counts mismatch (-want +got):\n%s", diff)
	}

	wt, ok := c.Lookup("반납-고장교체")
	require.True(t, ok)
	assert.True(t, wt.RequiresReplacement)
	assert.True(t, wt.IsUserFixed())
	assert.Equal(t, metadata.HolderVendor, wt.FixedCjID)

	_, ok = c.Lookup("이동")
	assert.False(t, ok)
}

func TestAvailableFor(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		state  string
		inUser string
		want   []string
	}{
		{
			name:   "new asset waiting in stock",
			state:  "wait",
			inUser: metadata.HolderStock,
			want:   []string{"신규-계약", "신규-고장교체", "신규-기타", "출고-신규지급", "출고-신규교체"},
		},
		{
			name:   "asset under repair",
			state:  "repair",
			inUser: "kim01",
			want:   []string{"신규-계약", "신규-고장교체", "신규-기타", "입고-수리반납"},
		},
		{
			name:   "rented asset",
			state:  "rent",
			inUser: "lee02",
			want:   []string{"신규-계약", "신규-고장교체", "신규-기타", "입고-대여반납"},
		},
		{
			name:   "returned asset",
			state:  "termination",
			inUser: metadata.HolderVendor,
			want:   []string{"신규-계약", "신규-고장교체", "신규-기타", "신규-재계약"},
		},
		{
			name:   "no state",
			state:  "",
			inUser: "kim01",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(c.AvailableFor(tt.state, tt.inUser))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AvailableFor mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAvailableForUseable(t *testing.T) {
	c := Default()

	stock := names(c.AvailableFor("useable", metadata.HolderStock))
	assert.Contains(t, stock, "출고-재고지급")
	assert.Contains(t, stock, "출고-대여")
	assert.Contains(t, stock, "반납-폐기")
	assert.NotContains(t, stock, "출고-사용자변경")
	assert.NotContains(t, stock, "입고-퇴사반납")

	user := names(c.AvailableFor("useable", "kim01"))
	assert.Contains(t, user, "출고-사용자변경")
	assert.Contains(t, user, "입고-퇴사반납")
	assert.Contains(t, user, "출고-수리")
	assert.NotContains(t, user, "출고-재고지급")
	assert.NotContains(t, user, "반납-기타")

	assert.Len(t, c.AvailableFor("HOLD", "kim01"), 25)
}

func TestValidate(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		workType string
		asset    Snapshot
		cjID     string
		wantErr  string
	}{
		{"issue stock", "출고-재고지급", Snapshot{State: "useable", InUser: "cjenc_inno"}, "kim01", ""},
		{"issue stock held by user", "출고-재고지급", Snapshot{State: "useable", InUser: "lee02"}, "kim01", "보유자가"},
		{"issue stock wrong state", "출고-재고지급", Snapshot{State: "repair", InUser: "cjenc_inno"}, "kim01", "상태가"},
		{"issue stock without user", "출고-재고지급", Snapshot{State: "useable", InUser: "cjenc_inno"}, "", "사용자(CJ ID)"},
		{"reassign to same user", "출고-사용자변경", Snapshot{State: "useable", InUser: "kim01"}, "kim01", "다른 사용자"},
		{"reassign", "출고-사용자변경", Snapshot{State: "useable", InUser: "kim01"}, "lee02", ""},
		{"inbound already in stock", "입고-퇴사반납", Snapshot{State: "useable", InUser: "cjenc_inno"}, "", "이미 회사 입고"},
		{"hold bypasses checks", "출고-재고지급", Snapshot{State: "hold", InUser: "lee02"}, "kim01", ""},
		{"hold still needs user", "출고-재고지급", Snapshot{State: "hold", InUser: "lee02"}, "", "사용자(CJ ID)"},
		{"re-contract requires termination even on hold", "신규-재계약", Snapshot{State: "hold", InUser: "aj_rent"}, "", "상태가"},
		{"new contract has no checks", "신규-계약", Snapshot{State: "process-ter", InUser: "x"}, "", ""},
		{"unknown work type", "이동", Snapshot{State: "useable"}, "kim01", "유효하지 않은"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Validate(tt.workType, tt.asset, tt.cjID)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, custom_error.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPlan(t *testing.T) {
	c := Default()
	start, _ := models.ParseDate("2025-01-01")
	end, _ := models.ParseDate("2027-12-31")

	tests := []struct {
		name      string
		req       models.TradeRequest
		asset     Snapshot
		wantCjID  string
		wantState string
		wantUser  string
		mutates   bool
	}{
		{
			name:      "rent out stock",
			req:       models.TradeRequest{WorkType: "출고-대여", CjID: "kim01"},
			asset:     Snapshot{State: "useable", InUser: "cjenc_inno"},
			wantCjID:  "kim01",
			wantState: "rent",
			wantUser:  "kim01",
			mutates:   true,
		},
		{
			name:      "send to repair keeps holder even if caller sends a user",
			req:       models.TradeRequest{WorkType: "출고-수리", CjID: "someone"},
			asset:     Snapshot{State: "useable", InUser: "kim01"},
			wantCjID:  "kim01",
			wantState: "repair",
			wantUser:  "kim01",
			mutates:   true,
		},
		{
			name:      "return rental to stock",
			req:       models.TradeRequest{WorkType: "입고-대여반납"},
			asset:     Snapshot{State: "rent", InUser: "kim01"},
			wantCjID:  "cjenc_inno",
			wantState: "useable",
			wantUser:  "cjenc_inno",
			mutates:   true,
		},
		{
			name:      "leave of absence puts asset on hold",
			req:       models.TradeRequest{WorkType: "입고-휴직반납"},
			asset:     Snapshot{State: "useable", InUser: "kim01"},
			wantCjID:  "kim01",
			wantState: "hold",
			wantUser:  "kim01",
			mutates:   true,
		},
		{
			name:      "return to vendor",
			req:       models.TradeRequest{WorkType: "반납-노후반납"},
			asset:     Snapshot{State: "useable", InUser: "cjenc_inno"},
			wantCjID:  "aj_rent",
			wantState: "termination",
			wantUser:  "aj_rent",
			mutates:   true,
		},
		{
			name:      "new contract records without mutation",
			req:       models.TradeRequest{WorkType: "신규-계약", CjID: "kim01"},
			asset:     Snapshot{State: "wait", InUser: "cjenc_inno"},
			wantCjID:  "kim01",
			wantState: "wait",
			wantUser:  "cjenc_inno",
			mutates:   false,
		},
		{
			name:      "re-contract with dates",
			req:       models.TradeRequest{WorkType: "신규-재계약", DayOfStart: &start, DayOfEnd: &end},
			asset:     Snapshot{State: "termination", InUser: "aj_rent"},
			wantCjID:  "cjenc_inno",
			wantState: "useable",
			wantUser:  "cjenc_inno",
			mutates:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Plan(tt.req, tt.asset)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCjID, got.CjID)
			assert.Equal(t, tt.wantState, got.NewState)
			assert.Equal(t, tt.wantUser, got.NewInUser)
			assert.Equal(t, tt.asset.InUser, got.ExUser)
			assert.Equal(t, tt.mutates, got.Mutates())
		})
	}
}

func TestPlanRequirements(t *testing.T) {
	c := Default()

	_, err := c.Plan(models.TradeRequest{WorkType: "반납-고장교체"}, Snapshot{State: "useable", InUser: "cjenc_inno"})
	assert.ErrorContains(t, err, "교체 자산번호")

	_, err = c.Plan(models.TradeRequest{WorkType: "신규-재계약"}, Snapshot{State: "termination", InUser: "aj_rent"})
	assert.ErrorContains(t, err, "시작일")

	got, err := c.Plan(models.TradeRequest{WorkType: "반납-고장교체", Replacement: " A-100 "}, Snapshot{State: "useable", InUser: "cjenc_inno"})
	require.NoError(t, err)
	assert.Equal(t, "A-100", got.Replacement)
}

func TestParseRejectsBrokenCatalogue(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown state", "- work_type: x\n  allowed_states: [lost]\n"},
		{"unknown source", "- work_type: x\n  source: warehouse\n"},
		{"target without user", "- work_type: x\n  effect:\n    state: useable\n    holder: target\n"},
		{"duplicate", "- work_type: x\n- work_type: x\n"},
		{"not yaml list", "work_type: x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestHolderChanging(t *testing.T) {
	changing := Default().HolderChanging()

	assert.Len(t, changing, 18)
	assert.Contains(t, changing, "출고-신규지급")
	assert.Contains(t, changing, "신규-재계약")
	assert.NotContains(t, changing, "출고-수리")
	assert.NotContains(t, changing, "신규-계약")
}
