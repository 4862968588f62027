package db

import (
	"github.com/prorochestvo/rawl/internal"
)

// SQLField is a column paired with the value to bind for it.
type SQLField interface {
	Name() string
	Value() interface{}
}

func NewSQLField(name string, value interface{}) SQLField {
	result := sqlField{}
	result.name = name
	result.value = value
	return &result
}

type sqlField struct {
	name  string
	value interface{}
}

func (f *sqlField) Name() string {
	return f.name
}

func (f *sqlField) Value() interface{} {
	return f.value
}

// SQLFields orders values by the declared columns, skipping columns without a
// value. Keys that are not declared columns are rejected.
func SQLFields(columns []string, values map[string]interface{}) ([]SQLField, error) {
	declared := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		declared[column] = struct{}{}
	}
	for key := range values {
		if _, ok := declared[key]; !ok {
			return nil, internal.NewError(internal.KindInvalidColumn, "column %q does not exist", key)
		}
	}
	result := make([]SQLField, 0, len(values))
	for _, column := range columns {
		if value, ok := values[column]; ok {
			result = append(result, NewSQLField(column, value))
		}
	}
	return result, nil
}
