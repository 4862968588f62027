package db

import (
	"fmt"
	"strings"

	"github.com/prorochestvo/rawl/internal"
)

// SQLLinker builds the statements behind the stock model operations. Table
// and column names are quoted by the dialect; values are always bound.
type SQLLinker interface {
	All(table SQLTable, columns []string) (Statement, error)
	Get(table SQLTable, columns []string, pk interface{}) (Statement, error)
	Insert(table SQLTable, fields []SQLField) (Statement, error)
	Update(table SQLTable, fields []SQLField, pk interface{}) (Statement, error)
	Delete(table SQLTable, pk interface{}) (Statement, error)
}

func NewSQLLinker(dialect Dialect) SQLLinker {
	result := sqlLinker{}
	result.dialect = dialect
	return &result
}

type sqlLinker struct {
	dialect Dialect
}

func (l *sqlLinker) All(table SQLTable, columns []string) (Statement, error) {
	query := fmt.Sprintf("SELECT {0}\nFROM %s;", l.dialect.Quote(table.Name()))
	return Assemble(l.dialect, query, columns)
}

func (l *sqlLinker) Get(table SQLTable, columns []string, pk interface{}) (Statement, error) {
	query := fmt.Sprintf("SELECT {0}\nFROM %s\nWHERE %s = {1};", l.dialect.Quote(table.Name()), l.dialect.Quote(table.PrimaryKey()))
	return Assemble(l.dialect, query, columns, pk)
}

func (l *sqlLinker) Insert(table SQLTable, fields []SQLField) (Statement, error) {
	if len(fields) == 0 {
		query := fmt.Sprintf("INSERT INTO %s\nDEFAULT VALUES\nRETURNING %s;", l.dialect.Quote(table.Name()), l.dialect.Quote(table.PrimaryKey()))
		return AssembleSimple(l.dialect, query)
	}
	names := make([]string, 0, len(fields))
	values := make([]interface{}, 0, len(fields))
	placeholders := make([]string, 0, len(fields))
	for i, field := range fields {
		names = append(names, field.Name())
		values = append(values, field.Value())
		placeholders = append(placeholders, fmt.Sprintf("{%d}", i+1))
	}
	query := fmt.Sprintf("INSERT INTO %s ({0})\nVALUES (%s)\nRETURNING %s;", l.dialect.Quote(table.Name()), strings.Join(placeholders, ", "), l.dialect.Quote(table.PrimaryKey()))
	return Assemble(l.dialect, query, names, values...)
}

func (l *sqlLinker) Update(table SQLTable, fields []SQLField, pk interface{}) (Statement, error) {
	if len(fields) == 0 {
		return Statement{}, internal.NewError(internal.KindInvalidColumn, "nothing to update")
	}
	set := make([]string, 0, len(fields))
	values := make([]interface{}, 0, len(fields)+1)
	for i, field := range fields {
		if !IsIdentifier(field.Name()) {
			return Statement{}, internal.NewError(internal.KindInvalidColumn, "%q is not a valid identifier", field.Name())
		}
		set = append(set, fmt.Sprintf("%s = {%d}", l.dialect.Quote(field.Name()), i))
		values = append(values, field.Value())
	}
	values = append(values, pk)
	query := fmt.Sprintf("UPDATE %s\nSET %s\nWHERE %s = {%d};", l.dialect.Quote(table.Name()), strings.Join(set, ", "), l.dialect.Quote(table.PrimaryKey()), len(fields))
	return AssembleSimple(l.dialect, query, values...)
}

func (l *sqlLinker) Delete(table SQLTable, pk interface{}) (Statement, error) {
	query := fmt.Sprintf("DELETE FROM %s\nWHERE %s = {0};", l.dialect.Quote(table.Name()), l.dialect.Quote(table.PrimaryKey()))
	return AssembleSimple(l.dialect, query, pk)
}
