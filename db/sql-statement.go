package db

import (
	"fmt"
	"strings"
)

// Statement is an assembled query with its bind arguments.
type Statement struct {
	Query string
	Args  []interface{}
	// Columns lists the resolved names substituted for {0}; empty for simple statements.
	Columns []string
}

// String shows the query followed by its arguments as SQL literals.
func (s Statement) String() string {
	if len(s.Args) == 0 {
		return s.Query
	}
	args := make([]string, 0, len(s.Args))
	for _, a := range s.Args {
		args = append(args, SQLEscape(a))
	}
	return fmt.Sprintf("%s [%s]", s.Query, strings.Join(args, ", "))
}
