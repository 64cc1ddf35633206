package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceUnmarshal(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantValue   string
		wantInvalid bool
	}{
		{name: "number", input: `35000`, wantValue: "35000"},
		{name: "decimal string", input: `"1200.50"`, wantValue: "1200.5"},
		{name: "thousands separators", input: `"1,200,000"`, wantValue: "1200000"},
		{name: "currency marks", input: `"₩ 50,000원"`, wantValue: "50000"},
		{name: "blank", input: `""`, wantValue: "0"},
		{name: "null", input: `null`, wantValue: "0"},
		{name: "text", input: `"미정"`, wantValue: "0", wantInvalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item struct {
				UnitPrice Price `json:"unit_price"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"unit_price":`+tt.input+`}`), &item))

			assert.True(t, decimal.RequireFromString(tt.wantValue).Equal(item.UnitPrice.Value))
			assert.Equal(t, tt.wantInvalid, item.UnitPrice.Invalid())
		})
	}
}

func TestPriceMarshalKeepsRawText(t *testing.T) {
	var p Price
	require.NoError(t, json.Unmarshal([]byte(`"미정"`), &p))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `"미정"`, string(out))
}
