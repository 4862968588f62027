package db

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/prorochestvo/rawl/internal"
)

var (
	ErrInvalidColumn    = internal.ErrInvalidColumn
	ErrTemplateMismatch = internal.ErrTemplateMismatch
)

var identifierSegment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Column is a single column identifier.
type Column string

func (c Column) ColumnName() string {
	return string(c)
}

// ColumnNamer is implemented by anything that can name a column.
type ColumnNamer interface {
	ColumnName() string
}

// Symbol binds a symbolic name to a column. An empty Column falls back to Name
// with trailing underscores removed, so "type_" names the column "type".
type Symbol struct {
	Name   string
	Column string
}

func (s Symbol) ColumnName() string {
	if len(s.Column) > 0 {
		return s.Column
	}
	return strings.TrimRight(s.Name, "_")
}

// Enum is an ordered set of symbols. Its order is the column order.
type Enum []Symbol

func NewEnum(names ...string) Enum {
	result := make(Enum, 0, len(names))
	for _, name := range names {
		result = append(result, Symbol{Name: name})
	}
	return result
}

func (e Enum) Columns() []string {
	result := make([]string, 0, len(e))
	for _, s := range e {
		result = append(result, s.ColumnName())
	}
	return result
}

func (e Enum) Lookup(name string) (string, bool) {
	if i := e.Index(name); i >= 0 {
		return e[i].ColumnName(), true
	}
	return "", false
}

// Index returns the position of the symbol called name, or -1.
func (e Enum) Index(name string) int {
	for i, s := range e {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks every symbol names a safe identifier and that no two symbols
// share a name or a column.
func (e Enum) Validate() error {
	names := make(map[string]struct{}, len(e))
	columns := make(map[string]struct{}, len(e))
	for _, s := range e {
		if _, ok := names[s.Name]; ok {
			return internal.NewError(internal.KindInvalidColumn, "duplicate symbol %q", s.Name)
		}
		names[s.Name] = struct{}{}
		column := s.ColumnName()
		if !IsIdentifier(column) {
			return internal.NewError(internal.KindInvalidColumn, "symbol %q names unsafe column %q", s.Name, column)
		}
		if _, ok := columns[column]; ok {
			return internal.NewError(internal.KindInvalidColumn, "duplicate column %q", column)
		}
		columns[column] = struct{}{}
	}
	return nil
}

// IsIdentifier reports whether name is a plain or dotted (alias.column) identifier.
func IsIdentifier(name string) bool {
	if len(name) == 0 {
		return false
	}
	for _, segment := range strings.Split(name, ".") {
		if !identifierSegment.MatchString(segment) {
			return false
		}
	}
	return true
}

// ParseColumns splits a comma or whitespace separated column list.
func ParseColumns(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// ResolveColumns normalizes column identifiers into validated names, keeping
// the first occurrence of each name in its original position.
func ResolveColumns(columns ...interface{}) ([]string, error) {
	result := make([]string, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	add := func(name string) error {
		if !IsIdentifier(name) {
			return internal.NewError(internal.KindInvalidColumn, "%q is not a valid identifier", name)
		}
		if _, ok := seen[name]; ok {
			return nil
		}
		seen[name] = struct{}{}
		result = append(result, name)
		return nil
	}
	for _, column := range columns {
		var err error
		switch c := column.(type) {
		case string:
			err = add(c)
		case ColumnNamer:
			err = add(c.ColumnName())
		case []string:
			for _, name := range c {
				if err = add(name); err != nil {
					break
				}
			}
		case Enum:
			if err = c.Validate(); err == nil {
				for _, name := range c.Columns() {
					if err = add(name); err != nil {
						break
					}
				}
			}
		case fmt.Stringer:
			err = add(c.String())
		default:
			err = internal.NewError(internal.KindInvalidColumn, "unsupported column value %v (%T)", column, column)
		}
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// RowKey is the name a column is addressed by in a result row: dots become underscores.
func RowKey(column string) string {
	return strings.ReplaceAll(column, ".", "_")
}
