package search

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		Fields: map[string]Field{
			"asset_number":   {Column: "a.asset_number"},
			"model":          {Column: "a.model"},
			"state":          {Column: "a.state"},
			"name":           {Column: "u.name"},
			"contract_month": {Column: "a.contract_month", Kind: KindNumber},
			"day_of_end":     {Column: "a.day_of_end", Kind: KindDate},
		},
		Keywords: []string{"asset_number", "model", "name"},
		Reserved: map[string]exp.Expression{
			"가용재고": goqu.Ex{"a.state": "useable", "a.in_user": "cjenc_inno"},
		},
	}
}

func toSQL(t *testing.T, e exp.Expression) (string, []interface{}) {
	t.Helper()
	sql, args, err := goqu.Dialect("postgres").From(goqu.T("assets").As("a")).
		Prepared(true).
		Where(e).
		ToSQL()
	require.NoError(t, err)
	return sql, args
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"state:rent", "state:rent"},
		{"대여중 (state:rent)", "state:rent"},
		{"  노트북 반납 (model:gram AND state:useable) ", "model:gram AND state:useable"},
		{"(state:rent)", "(state:rent)"},
		{"state:rent OR (model:gram)", "state:rent OR (model:gram)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Unwrap(tt.in))
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	node, err := Parse("state:rent AND model:gram OR name:kim")
	require.NoError(t, err)

	require.Equal(t, nodeOr, node.Kind)
	require.Len(t, node.Children, 2)
	assert.Equal(t, nodeAnd, node.Children[0].Kind)
	assert.Equal(t, &Node{Kind: nodeTerm, Field: "name", Op: ":", Value: "kim"}, node.Children[1])
}

func TestParseGroupsAndImplicitAnd(t *testing.T) {
	node, err := Parse(`(state:rent OR state:repair) "lg gram"`)
	require.NoError(t, err)

	require.Equal(t, nodeAnd, node.Kind)
	require.Len(t, node.Children, 2)
	assert.Equal(t, nodeOr, node.Children[0].Kind)
	assert.Equal(t, &Node{Kind: nodeKeyword, Value: "lg gram"}, node.Children[1])
}

func TestParseOperators(t *testing.T) {
	tests := []struct {
		in   string
		want Node
	}{
		{"contract_month>=24", Node{Kind: nodeTerm, Field: "contract_month", Op: ">=", Value: "24"}},
		{"STATE!=rent", Node{Kind: nodeTerm, Field: "state", Op: "!=", Value: "rent"}},
		{"state==rent", Node{Kind: nodeTerm, Field: "state", Op: "=", Value: "rent"}},
		{`model:"gram 16"`, Node{Kind: nodeTerm, Field: "model", Op: ":", Value: "gram 16"}},
		{"노트북", Node{Kind: nodeKeyword, Value: "노트북"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			node, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, &tt.want, node)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"(state:rent", "state:rent OR", `model:"gram`, "AND state:rent", ")"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	node, err := Parse("   ")
	assert.NoError(t, err)
	assert.Nil(t, node)
}

func TestCompileContains(t *testing.T) {
	e, err := Compile("model:gram_16", testSchema())
	require.NoError(t, err)

	sql, args := toSQL(t, e)
	assert.Contains(t, sql, `CAST("a"."model" AS TEXT) ILIKE $1`)
	assert.Equal(t, []interface{}{`%gram\_16%`}, args)
}

func TestCompileKeywordSearchesAllKeywordFields(t *testing.T) {
	e, err := Compile("kim", testSchema())
	require.NoError(t, err)

	sql, args := toSQL(t, e)
	assert.Contains(t, sql, `CAST("a"."asset_number" AS TEXT) ILIKE $1`)
	assert.Contains(t, sql, `CAST("u"."name" AS TEXT) ILIKE $3`)
	assert.Contains(t, sql, " OR ")
	assert.Equal(t, []interface{}{"%kim%", "%kim%", "%kim%"}, args)
}

func TestCompileComparisons(t *testing.T) {
	e, err := Compile("contract_month>24 AND day_of_end<=2025-12-31", testSchema())
	require.NoError(t, err)

	sql, args := toSQL(t, e)
	assert.Contains(t, sql, `"a"."contract_month" > $1`)
	assert.Contains(t, sql, `"a"."day_of_end" <= $2`)
	assert.Contains(t, sql, " AND ")
	assert.Equal(t, []interface{}{float64(24), "2025-12-31"}, args)
}

func TestCompileTextEquality(t *testing.T) {
	e, err := Compile("state=RENT", testSchema())
	require.NoError(t, err)

	sql, args := toSQL(t, e)
	assert.Contains(t, sql, `LOWER(CAST("a"."state" AS TEXT)) = $1`)
	assert.Equal(t, []interface{}{"rent"}, args)
}

func TestCompileNotEqualIncludesNull(t *testing.T) {
	e, err := Compile("state!=rent", testSchema())
	require.NoError(t, err)

	sql, _ := toSQL(t, e)
	assert.Contains(t, sql, `"a"."state" IS NULL`)
	assert.Contains(t, sql, `LOWER(CAST("a"."state" AS TEXT)) != $1`)
}

func TestCompileReserved(t *testing.T) {
	e, err := Compile("가용재고", testSchema())
	require.NoError(t, err)
	assert.Equal(t, goqu.Ex{"a.state": "useable", "a.in_user": "cjenc_inno"}, e)

	wrapped, err := Compile("재고 (가용재고)", testSchema())
	require.NoError(t, err)
	assert.Equal(t, e, wrapped)
}

func TestCompileRejects(t *testing.T) {
	tests := map[string]string{
		"unknown field": "password:x",
		"non numeric":   "contract_month>abc",
		"unbalanced":    "(state:rent",
		"dangling or":   "state:rent OR",
	}

	for name, query := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Compile(query, testSchema())
			assert.Error(t, err)
		})
	}
}

func TestCompileEmpty(t *testing.T) {
	e, err := Compile("", testSchema())
	assert.NoError(t, err)
	assert.Nil(t, e)
}
