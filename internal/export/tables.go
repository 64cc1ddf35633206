// Package export renders assets and trades as header-first tables shared by
// the CSV download, the spreadsheet backup and the S3 archive.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"assetdb/pkg/models"
)

const TimestampLayout = "2006-01-02 15:04:05"

var AssetHeaders = []string{
	"자산번호", "모델", "분류", "시리얼번호", "상태", "사용자ID", "사용자명", "부서", "시작일", "종료일", "계약월",
}

var TradeHeaders = []string{
	"trade_id", "timestamp", "work_type", "asset_number", "model",
	"ex_user", "ex_user_name", "ex_user_part",
	"cj_id", "name", "part", "memo",
}

var cellCleaner = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// Cell flattens tabs and line breaks so a value stays in one spreadsheet cell.
func Cell(value string) string {
	return cellCleaner.Replace(value)
}

func AssetTable(assets []models.AssetView) [][]string {
	table := make([][]string, 0, len(assets)+1)
	table = append(table, AssetHeaders)

	for _, a := range assets {
		table = append(table, []string{
			Cell(a.AssetNumber),
			Cell(a.Model),
			Cell(a.Category),
			Cell(a.SerialNumber),
			Cell(a.State),
			Cell(a.InUser),
			Cell(a.UserName),
			Cell(a.UserPart),
			formatDate(a.DayOfStart),
			formatDate(a.DayOfEnd),
			formatInt(a.ContractMonth),
		})
	}

	return table
}

// TradeTable formats timestamps in loc.
func TradeTable(trades []models.TradeView, loc *time.Location) [][]string {
	table := make([][]string, 0, len(trades)+1)
	table = append(table, TradeHeaders)

	for _, t := range trades {
		timestamp := ""
		if !t.Timestamp.IsZero() {
			timestamp = t.Timestamp.In(loc).Format(TimestampLayout)
		}
		table = append(table, []string{
			strconv.Itoa(t.ID),
			timestamp,
			Cell(t.WorkType),
			Cell(t.AssetNumber),
			Cell(t.Model),
			Cell(t.ExUser),
			Cell(t.ExUserName),
			Cell(t.ExUserPart),
			Cell(t.CjID),
			Cell(t.Name),
			Cell(t.Part),
			Cell(t.Memo),
		})
	}

	return table
}

// WriteCSV writes table with a UTF-8 byte order mark so spreadsheet tools
// detect the encoding of Korean headers.
func WriteCSV(w io.Writer, table [][]string) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func formatDate(d *models.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.String()
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
