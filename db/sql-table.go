package db

import (
	"github.com/prorochestvo/rawl/internal"
)

// SQLTable is a table binding: its name and the column used as primary key.
type SQLTable interface {
	Name() string
	PrimaryKey() string
}

func NewSQLTable(name, primaryKey string) (SQLTable, error) {
	if !IsIdentifier(name) {
		return nil, internal.NewError(internal.KindInvalidColumn, "table name %q is not a valid identifier", name)
	}
	if !IsIdentifier(primaryKey) {
		return nil, internal.NewError(internal.KindInvalidColumn, "primary key %q is not a valid identifier", primaryKey)
	}
	result := sqlTable{}
	result.name = name
	result.primaryKey = primaryKey
	return &result, nil
}

type sqlTable struct {
	name       string
	primaryKey string
}

func (t *sqlTable) Name() string {
	return t.name
}

func (t *sqlTable) PrimaryKey() string {
	return t.primaryKey
}
