package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

var priceCleaner = strings.NewReplacer(",", "", "₩", "", "원", "", " ", "")

// Price is a unit price cell as typed into a spreadsheet. Blank cells are
// zero; thousands separators and currency marks are dropped. A value that
// still does not parse is kept in Raw and reported by the row that owns it.
type Price struct {
	Value decimal.Decimal
	Raw   string
}

func NewPrice(value decimal.Decimal) Price {
	return Price{Value: value}
}

func (p Price) Invalid() bool {
	return p.Raw != ""
}

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}

	cleaned := priceCleaner.Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return nil
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		p.Raw = text
		return nil
	}
	p.Value = value
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.Invalid() {
		return json.Marshal(p.Raw)
	}
	return []byte(p.Value.String()), nil
}
