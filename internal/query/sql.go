package query

import (
	"fmt"
	"strings"

	"github.com/huangsam/chartwire/schema"
)

// QuoteIdent returns the properly quoted identifier for the given backend.
func QuoteIdent(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// Placeholder returns the n-th (1-based) parameter placeholder for the backend.
func Placeholder(backend schema.DatabaseBackend, n int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SQL renders the query as a SELECT with bound parameters.
// Sort attributes are applied in order after the WHERE clause.
func (q *Query) SQL(backend schema.DatabaseBackend, sort []schema.SortSpec) (string, []any, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s", QuoteIdent(q.Table(), backend))

	var args []any
	for i, c := range q.Conditions {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		col := QuoteIdent(c.Column(), backend)

		if c.Value.Kind == EmptyLiteral {
			if c.Op == Eq {
				fmt.Fprintf(&b, "(%s IS NULL OR %s = '')", col, col)
			} else {
				fmt.Fprintf(&b, "(%s IS NOT NULL AND %s <> '')", col, col)
			}
			continue
		}

		op := string(c.Op)
		if c.Op == Neq {
			op = "<>"
		}
		args = append(args, c.Value.Value())
		fmt.Fprintf(&b, "%s %s %s", col, op, Placeholder(backend, len(args)))
	}

	for i, s := range sort {
		column := schema.SnakeCase(s.Attribute)
		if !ValidIdentifier(column) {
			return "", nil, fmt.Errorf("invalid sort attribute %q", s.Attribute)
		}
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		dir := "ASC"
		if s.Direction == schema.SortDesc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, "%s %s", QuoteIdent(column, backend), dir)
	}
	return b.String(), args, nil
}
