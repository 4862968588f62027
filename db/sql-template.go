package db

import (
	"sort"
	"strconv"
	"strings"

	"github.com/prorochestvo/rawl/internal"
)

type fragment struct {
	text  string
	index int // -1 for literal text
}

// parseTemplate splits a template into literal text and {n} placeholders.
// {{ and }} are literal braces.
func parseTemplate(template string) ([]fragment, error) {
	result := make([]fragment, 0)
	literal := strings.Builder{}
	flush := func() {
		if literal.Len() > 0 {
			result = append(result, fragment{text: literal.String(), index: -1})
			literal.Reset()
		}
	}
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			literal.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			literal.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return nil, internal.NewError(internal.KindTemplateMismatch, "unclosed placeholder at offset %d", i)
			}
			n, err := strconv.Atoi(template[i+1 : i+end])
			if err != nil || n < 0 || template[i+1] == '+' {
				return nil, internal.NewError(internal.KindTemplateMismatch, "malformed placeholder %q", template[i:i+end+1])
			}
			flush()
			result = append(result, fragment{index: n})
			i += end
		case c == '}':
			return nil, internal.NewError(internal.KindTemplateMismatch, "unmatched '}' at offset %d", i)
		default:
			literal.WriteByte(c)
		}
	}
	flush()
	return result, nil
}

// checkPlaceholders verifies the value placeholders are exactly first..first+len(args)-1.
func checkPlaceholders(fragments []fragment, first int, args int) error {
	seen := make(map[int]struct{})
	for _, f := range fragments {
		if f.index >= first {
			seen[f.index] = struct{}{}
		}
	}
	indexes := make([]int, 0, len(seen))
	for i := range seen {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for i, index := range indexes {
		if index != first+i {
			return internal.NewError(internal.KindTemplateMismatch, "placeholder {%d} has no preceding {%d}", index, first+i)
		}
	}
	if len(indexes) != args {
		return internal.NewError(internal.KindTemplateMismatch, "template expects %d value(s), got %d", len(indexes), args)
	}
	return nil
}

// Assemble builds a statement from a template whose {0} is replaced by the
// quoted column list and whose {1}..{n} become bind markers for args.
func Assemble(dialect Dialect, template string, columns []string, args ...interface{}) (Statement, error) {
	if len(columns) == 0 {
		return Statement{}, internal.NewError(internal.KindInvalidColumn, "empty column list")
	}
	for _, column := range columns {
		if !IsIdentifier(column) {
			return Statement{}, internal.NewError(internal.KindInvalidColumn, "%q is not a valid identifier", column)
		}
	}
	fragments, err := parseTemplate(template)
	if err != nil {
		return Statement{}, err
	}
	hasColumns := false
	for _, f := range fragments {
		if f.index == 0 {
			hasColumns = true
			break
		}
	}
	if !hasColumns {
		return Statement{}, internal.NewError(internal.KindTemplateMismatch, "template has no {0} column placeholder")
	}
	if err := checkPlaceholders(fragments, 1, len(args)); err != nil {
		return Statement{}, err
	}
	quoted := make([]string, 0, len(columns))
	for _, column := range columns {
		quoted = append(quoted, dialect.Quote(column))
	}
	result := render(dialect, fragments, 1, strings.Join(quoted, ", "), args)
	result.Columns = append([]string(nil), columns...)
	return result, nil
}

// AssembleSimple builds a statement from a template with value placeholders
// only, numbered from {0}.
func AssembleSimple(dialect Dialect, template string, args ...interface{}) (Statement, error) {
	fragments, err := parseTemplate(template)
	if err != nil {
		return Statement{}, err
	}
	if err := checkPlaceholders(fragments, 0, len(args)); err != nil {
		return Statement{}, err
	}
	return render(dialect, fragments, 0, "", args), nil
}

func render(dialect Dialect, fragments []fragment, first int, columns string, args []interface{}) Statement {
	query := strings.Builder{}
	bound := make([]interface{}, 0, len(args))
	if dialect.Ordinal() {
		bound = append(bound, args...)
	}
	for _, f := range fragments {
		switch {
		case f.index < 0:
			query.WriteString(f.text)
		case f.index < first:
			query.WriteString(columns)
		case dialect.Ordinal():
			query.WriteString(dialect.Placeholder(f.index - first + 1))
		default:
			bound = append(bound, args[f.index-first])
			query.WriteString(dialect.Placeholder(len(bound)))
		}
	}
	return Statement{Query: query.String(), Args: bound}
}
