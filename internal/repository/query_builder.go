package repository

import "github.com/doug-martin/goqu/v9"

// QueryBuilder turns request filters into goqu conditions. Aliases map request
// keys to qualified column names; unknown keys are dropped.
type QueryBuilder interface {
	AddCondition(key string, value interface{})
	BuildConditions(aliases map[string]string) goqu.Ex
	IsEmpty() bool
}
