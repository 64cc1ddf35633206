// Package imports upserts spreadsheet rows into assets and users.
package imports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"assetdb/pkg/models"

	"github.com/shopspring/decimal"
)

type kind int

const (
	kindText kind = iota
	kindNullable
	kindDate
	kindDecimal
)

// Target describes one importable table.
type Target struct {
	Table    string
	Key      string
	Columns  map[string]kind
	Required []string
	Missing  string
}

var Assets = Target{
	Table: "assets",
	Key:   "asset_number",
	Columns: map[string]kind{
		"asset_number":  kindText,
		"category":      kindText,
		"model":         kindText,
		"serial_number": kindText,
		"state":         kindText,
		"in_user":       kindNullable,
		"day_of_start":  kindDate,
		"day_of_end":    kindDate,
		"unit_price":    kindDecimal,
		"replacement":   kindNullable,
		"memo":          kindNullable,
	},
	Required: []string{"asset_number", "day_of_start", "day_of_end"},
	Missing:  "필수 정보(자산번호, 시작일, 종료일)가 누락되어 처리할 데이터가 없습니다.",
}

// Users excludes sec_level and password so an import cannot grant access.
var Users = Target{
	Table: "users",
	Key:   "cj_id",
	Columns: map[string]kind{
		"cj_id": kindText,
		"name":  kindText,
		"part":  kindText,
		"state": kindText,
	},
	Required: []string{"cj_id"},
	Missing:  "필수 정보(사용자 ID)가 누락되어 처리할 데이터가 없습니다.",
}

type Row map[string]interface{}

// Plan is the cleaned batch ready for the upsert.
type Plan struct {
	Columns    []string
	Rows       []map[string]string
	Total      int
	Skipped    int
	Duplicates int
}

type Summary struct {
	Total      int    `json:"total"`
	Inserted   int    `json:"inserted"`
	Updated    int    `json:"updated"`
	Identical  int    `json:"identical"`
	Skipped    int    `json:"skipped"`
	Duplicates int    `json:"duplicates"`
	Message    string `json:"message"`
}

// Prepare trims values, drops rows missing a required field and keeps the
// last occurrence of a key. Columns outside the target are ignored.
func (t Target) Prepare(rows []Row) Plan {
	plan := Plan{Total: len(rows)}

	seen := map[string]bool{}
	for _, row := range rows {
		for col := range row {
			if _, ok := t.Columns[col]; ok && !seen[col] {
				seen[col] = true
				plan.Columns = append(plan.Columns, col)
			}
		}
	}
	sort.Strings(plan.Columns)

	index := map[string]int{}
	for _, row := range rows {
		cleaned := make(map[string]string, len(plan.Columns))
		for _, col := range plan.Columns {
			cleaned[col] = t.normalize(col, row[col])
		}
		if !t.complete(cleaned) {
			plan.Skipped++
			continue
		}

		key := cleaned[t.Key]
		if i, ok := index[key]; ok {
			plan.Duplicates++
			plan.Rows[i] = cleaned
			continue
		}
		index[key] = len(plan.Rows)
		plan.Rows = append(plan.Rows, cleaned)
	}

	return plan
}

func (t Target) complete(row map[string]string) bool {
	for _, col := range t.Required {
		if row[col] == "" {
			return false
		}
	}
	return true
}

// normalize renders a value as text. Unparsable dates become empty.
func (t Target) normalize(col string, value interface{}) string {
	var s string
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(v)
	default:
		s = strings.TrimSpace(fmt.Sprint(v))
	}

	if t.Columns[col] == kindDate && s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			return ""
		}
		return d.String()
	}
	return s
}

// DropUnknownHolders clears in_user values that name no existing user.
func (p *Plan) DropUnknownHolders(known map[string]bool) {
	for _, row := range p.Rows {
		if holder := row["in_user"]; holder != "" && !known[holder] {
			row["in_user"] = ""
		}
	}
}

// Holders returns the distinct non-empty in_user values.
func (p Plan) Holders() []string {
	set := map[string]bool{}
	var out []string
	for _, row := range p.Rows {
		if holder := row["in_user"]; holder != "" && !set[holder] {
			set[holder] = true
			out = append(out, holder)
		}
	}
	return out
}

func (p Plan) Keys(key string) []string {
	keys := make([]string, len(p.Rows))
	for i, row := range p.Rows {
		keys[i] = row[key]
	}
	return keys
}

// Classify compares the batch with the rows read before the upsert.
func (t Target) Classify(plan Plan, existing map[string]map[string]string) Summary {
	summary := Summary{Total: plan.Total, Skipped: plan.Skipped, Duplicates: plan.Duplicates}

	for _, row := range plan.Rows {
		current, ok := existing[row[t.Key]]
		switch {
		case !ok:
			summary.Inserted++
		case t.changed(plan.Columns, row, current):
			summary.Updated++
		default:
			summary.Identical++
		}
	}

	summary.Message = summary.message()
	return summary
}

func (t Target) changed(columns []string, row, current map[string]string) bool {
	for _, col := range columns {
		in, db := row[col], strings.TrimSpace(current[col])
		if t.Columns[col] == kindDecimal && in != "" && db != "" {
			a, errA := decimal.NewFromString(in)
			b, errB := decimal.NewFromString(db)
			if errA == nil && errB == nil {
				if !a.Equal(b) {
					return true
				}
				continue
			}
		}
		if in != db {
			return true
		}
	}
	return false
}

func (s Summary) message() string {
	msg := fmt.Sprintf("총 %d건 처리 완료: 신규 %d건, 업데이트 %d건", s.Total, s.Inserted, s.Updated)
	if s.Identical > 0 {
		msg += fmt.Sprintf(", 변경 없음 %d건", s.Identical)
	}
	if s.Skipped > 0 {
		msg += fmt.Sprintf(", 필수정보 누락 %d건 제외", s.Skipped)
	}
	if s.Duplicates > 0 {
		msg += fmt.Sprintf(", 입력 데이터 내 중복 %d건 제외 (마지막 값 적용)", s.Duplicates)
	}
	return msg
}
