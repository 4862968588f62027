package rawl

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/prorochestvo/rawl/db"
	"github.com/prorochestvo/rawl/internal"
)

// layout maps row keys to positions. It is built once per column list and
// shared by every row read with it.
type layout struct {
	keys  []string
	index map[string]int
}

func newLayout(columns []string) *layout {
	result := layout{}
	result.keys = make([]string, 0, len(columns))
	result.index = make(map[string]int, len(columns))
	for _, column := range columns {
		key := db.RowKey(column)
		if _, ok := result.index[key]; !ok {
			result.index[key] = len(result.keys)
		}
		result.keys = append(result.keys, key)
	}
	return &result
}

// Row is one returned record, addressable by position or by column name.
// Dotted columns (alias.column) are addressed as alias_column.
type Row struct {
	layout *layout
	values []interface{}
	filled int
}

func newRow(l *layout, values []interface{}) *Row {
	result := Row{layout: l, values: make([]interface{}, len(l.keys))}
	result.filled = copy(result.values, values)
	return &result
}

// Len is the number of columns the row carries.
func (r *Row) Len() int {
	return r.filled
}

func (r *Row) Columns() []string {
	return append([]string(nil), r.layout.keys[:r.filled]...)
}

func (r *Row) Values() []interface{} {
	return append([]interface{}(nil), r.values[:r.filled]...)
}

// At returns the value at position i, or nil when i is out of range.
func (r *Row) At(i int) interface{} {
	if i < 0 || i >= r.filled {
		return nil
	}
	return r.values[i]
}

func (r *Row) Index(i int) (interface{}, error) {
	if i < 0 || i >= r.filled {
		return nil, internal.NewError(internal.KindInvalidColumn, "unknown index value %d", i)
	}
	return r.values[i], nil
}

func (r *Row) position(name string) (int, bool) {
	i, ok := r.layout.index[db.RowKey(name)]
	if !ok || i >= r.filled {
		return 0, false
	}
	return i, true
}

func (r *Row) Get(name string) (interface{}, error) {
	i, ok := r.position(name)
	if !ok {
		return nil, internal.NewError(internal.KindInvalidColumn, "%s is not available", name)
	}
	return r.values[i], nil
}

// Value returns the value of the named column, or nil when the row lacks it.
func (r *Row) Value(name string) interface{} {
	if i, ok := r.position(name); ok {
		return r.values[i]
	}
	return nil
}

func (r *Row) Has(name string) bool {
	_, ok := r.position(name)
	return ok
}

func (r *Row) Set(name string, value interface{}) error {
	i, ok := r.position(name)
	if !ok {
		return internal.NewError(internal.KindInvalidColumn, "%s is not available", name)
	}
	r.values[i] = value
	return nil
}

func (r *Row) SetIndex(i int, value interface{}) error {
	if i < 0 || i >= r.filled {
		return internal.NewError(internal.KindInvalidColumn, "unknown index value %d", i)
	}
	r.values[i] = value
	return nil
}

func (r *Row) Map() map[string]interface{} {
	result := make(map[string]interface{}, r.filled)
	for i := 0; i < r.filled; i++ {
		result[r.layout.keys[i]] = r.values[i]
	}
	return result
}

func (r *Row) String() string {
	parts := make([]string, 0, r.filled)
	for i := 0; i < r.filled; i++ {
		parts = append(parts, fmt.Sprintf("%s: %v", r.layout.keys[i], printable(r.values[i])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON writes the row as an object in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteByte('{')
	for i := 0; i < r.filled; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.layout.keys[i])
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(printable(r.values[i]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the row as a mapping in column order.
func (r *Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i < r.filled; i++ {
		value := &yaml.Node{}
		switch v := printable(r.values[i]).(type) {
		case []byte:
			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(v)}
		default:
			if err := value.Encode(v); err != nil {
				return nil, err
			}
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.layout.keys[i]}, value)
	}
	return node, nil
}

// printable converts driver values that do not encode well on their own.
// Bytes that are not UTF-8 stay []byte and encode as base64.
func printable(value interface{}) interface{} {
	switch v := value.(type) {
	case []byte:
		if !utf8.Valid(v) {
			return v
		}
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	}
	return value
}
