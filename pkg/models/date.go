package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day without time zone, serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts plain dates, RFC3339 timestamps and "YYYY/MM/DD" or
// "YYYY.MM.DD" as typed into spreadsheets. Anything after the day is dropped.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return NewDate(t), nil
	}

	day := value
	if idx := strings.IndexAny(day, "T "); idx > 0 {
		day = day[:idx]
	}
	day = strings.NewReplacer("/", "-", ".", "-").Replace(day)

	t, err := time.Parse(DateLayout, day)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", value)
	}
	return NewDate(t), nil
}

// ParseDatePtr returns nil for empty or unparsable input.
func ParseDatePtr(value string) *Date {
	d, err := ParseDate(value)
	if err != nil {
		return nil
	}
	return &d
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
	case string:
		return d.UnmarshalJSON([]byte(v))
	case []byte:
		return d.UnmarshalJSON(v)
	case nil:
		*d = Date{}
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// ContractMonths counts whole months covered by an inclusive contract period,
// so 2024-01-01..2026-12-31 is 36. Reversed periods yield 0.
func ContractMonths(start, end Date) int {
	next := end.AddDate(0, 0, 1)
	months := (next.Year()-start.Year())*12 + int(next.Month()) - int(start.Month())
	if next.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
