package repository

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
)

func TestBuildConditions(t *testing.T) {
	qb := NewQueryBuilder()
	assert.True(t, qb.IsEmpty())

	qb.AddCondition("state", "useable")
	qb.AddCondition("category", "")
	qb.AddCondition("in_user", []string{"kim01", "lee02"})
	qb.AddCondition("password", "x")

	conditions := qb.BuildConditions(map[string]string{
		"state":    "a.state",
		"category": "a.category",
		"in_user":  "a.in_user",
	})

	assert.Equal(t, goqu.Ex{
		"a.state":   "useable",
		"a.in_user": []string{"kim01", "lee02"},
	}, conditions)
}

func TestBuildConditionsSQL(t *testing.T) {
	qb := NewQueryBuilder()
	qb.AddCondition("state", "rent")

	sql, args, err := Dialect().From(goqu.T("assets").As("a")).
		Prepared(true).
		Where(qb.BuildConditions(map[string]string{"state": "a.state"})).
		ToSQL()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "assets" AS "a" WHERE ("a"."state" = $1)`, sql)
	assert.Equal(t, []interface{}{"rent"}, args)
}
