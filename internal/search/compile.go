package search

import (
	"strconv"
	"strings"

	custom_error "assetdb/pkg/errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
)

// Field is a searchable column. Column is the qualified identifier used in the
// listing query, e.g. "a.asset_number" or "u.name".
type Field struct {
	Column string
	Kind   Kind
}

// Schema whitelists the fields a query may name. Keywords lists the fields a
// bare word is matched against, Reserved maps whole queries to fixed filters.
type Schema struct {
	Fields   map[string]Field
	Keywords []string
	Reserved map[string]exp.Expression
}

// Compile turns a query into a WHERE expression. An empty query yields nil.
func Compile(query string, schema Schema) (exp.Expression, error) {
	query = Unwrap(query)
	if query == "" {
		return nil, nil
	}
	if reserved, ok := schema.Reserved[query]; ok {
		return reserved, nil
	}

	node, err := Parse(query)
	if err != nil {
		return nil, custom_error.NewValidationError("검색어를 해석할 수 없습니다: %v", err)
	}
	if node == nil {
		return nil, nil
	}
	return schema.compile(node)
}

func (s Schema) compile(n *Node) (exp.Expression, error) {
	switch n.Kind {
	case nodeAnd, nodeOr:
		parts := make([]exp.Expression, 0, len(n.Children))
		for _, child := range n.Children {
			e, err := s.compile(child)
			if err != nil {
				return nil, err
			}
			parts = append(parts, e)
		}
		if n.Kind == nodeAnd {
			return goqu.And(parts...), nil
		}
		return goqu.Or(parts...), nil
	case nodeKeyword:
		return s.keyword(n.Value), nil
	default:
		return s.term(n)
	}
}

func (s Schema) keyword(value string) exp.Expression {
	pattern := ContainsPattern(value)
	parts := make([]exp.Expression, 0, len(s.Keywords))
	for _, name := range s.Keywords {
		if f, ok := s.Fields[name]; ok {
			parts = append(parts, asText(f).ILike(pattern))
		}
	}
	return goqu.Or(parts...)
}

func (s Schema) term(n *Node) (exp.Expression, error) {
	f, ok := s.Fields[n.Field]
	if !ok {
		return nil, custom_error.NewValidationError("알 수 없는 검색 필드입니다: %s", n.Field)
	}

	col := goqu.I(f.Column)
	if n.Op == ":" {
		return asText(f).ILike(ContainsPattern(n.Value)), nil
	}

	if f.Kind == KindNumber {
		num, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, custom_error.NewValidationError("%s 값은 숫자여야 합니다: %q", n.Field, n.Value)
		}
		return compare(col, n.Op, num), nil
	}

	if f.Kind == KindDate {
		return compare(col, n.Op, n.Value), nil
	}

	switch n.Op {
	case "=":
		return lowerText(f).Eq(strings.ToLower(n.Value)), nil
	case "!=":
		return goqu.Or(col.IsNull(), lowerText(f).Neq(strings.ToLower(n.Value))), nil
	default:
		return compare(asText(f), n.Op, n.Value), nil
	}
}

type comparer interface {
	Eq(interface{}) exp.BooleanExpression
	Neq(interface{}) exp.BooleanExpression
	Gt(interface{}) exp.BooleanExpression
	Gte(interface{}) exp.BooleanExpression
	Lt(interface{}) exp.BooleanExpression
	Lte(interface{}) exp.BooleanExpression
}

func compare(col comparer, op string, value interface{}) exp.Expression {
	switch op {
	case "!=":
		return col.Neq(value)
	case ">":
		return col.Gt(value)
	case ">=":
		return col.Gte(value)
	case "<":
		return col.Lt(value)
	case "<=":
		return col.Lte(value)
	default:
		return col.Eq(value)
	}
}

func asText(f Field) exp.LiteralExpression {
	return goqu.L("CAST(? AS TEXT)", goqu.I(f.Column))
}

func lowerText(f Field) exp.LiteralExpression {
	return goqu.L("LOWER(CAST(? AS TEXT))", goqu.I(f.Column))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching value as a literal substring.
func ContainsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}
