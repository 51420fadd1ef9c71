package query

import (
	"testing"

	"github.com/huangsam/chartwire/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	q, err := Parse("//Sales.Point[Sales.Point_Chart = '42'][amount >= 10 and active = true]")
	require.NoError(t, err)

	assert.Equal(t, "Sales.Point", q.Entity)
	assert.Equal(t, "point", q.Table())
	require.Len(t, q.Conditions, 3)

	assert.Equal(t, Condition{Attribute: "Sales.Point_Chart", Op: Eq, Value: Literal{Kind: StringLiteral, Str: "42"}}, q.Conditions[0])
	assert.Equal(t, "point_chart", q.Conditions[0].Column())
	assert.Equal(t, Gte, q.Conditions[1].Op)
	assert.Equal(t, 10.0, q.Conditions[1].Value.Num)
	assert.Equal(t, Literal{Kind: BoolLiteral, Bool: true}, q.Conditions[2].Value)
}

func TestParseNoConstraint(t *testing.T) {
	q, err := Parse("//Sales.Series")
	require.NoError(t, err)
	assert.Empty(t, q.Conditions)
	assert.Equal(t, "series", q.Table())
}

func TestParseEscapedQuote(t *testing.T) {
	q, err := Parse("//Shop.Item[name != 'O''Brien']")
	require.NoError(t, err)
	assert.Equal(t, "O'Brien", q.Conditions[0].Value.Str)
	assert.Equal(t, Neq, q.Conditions[0].Op)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"missing slashes":      "Sales.Point",
		"missing entity":       "//[a = 1]",
		"unterminated group":   "//Sales.Point[a = 1",
		"unterminated string":  "//Sales.Point[a = 'x]",
		"missing operator":     "//Sales.Point[a 1]",
		"bad literal":          "//Sales.Point[a = abc]",
		"ordered empty":        "//Sales.Point[a < empty]",
		"trailing junk":        "//Sales.Point foo",
		"or is not supported":  "//Sales.Point[a = 1 or b = 2]",
		"invalid entity digit": "//Sales.1x",
	}
	for name, expr := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(expr)
			assert.Error(t, err)
		})
	}
}

func TestMatch(t *testing.T) {
	rec := schema.NewMapRecord("1", map[string]any{
		"point_chart": "42",
		"amount":      int64(15),
		"label":       "",
		"active":      true,
	})

	tests := []struct {
		expr string
		want bool
	}{
		{"//Sales.Point", true},
		{"//Sales.Point[Sales.Point_Chart = '42']", true},
		{"//Sales.Point[Sales.Point_Chart = '7']", false},
		{"//Sales.Point[amount > 10]", true},
		{"//Sales.Point[amount < 10]", false},
		{"//Sales.Point[amount = 15 and active = true]", true},
		{"//Sales.Point[active = false]", false},
		{"//Sales.Point[label = empty]", true},
		{"//Sales.Point[missing = empty]", true},
		{"//Sales.Point[label != empty]", false},
		{"//Sales.Point[missing = 'x']", false},
		{"//Sales.Point[missing != 'x']", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			q, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Match(rec.Get))
		})
	}
}

func TestSQL(t *testing.T) {
	q, err := Parse("//Sales.Point[Sales.Point_Chart = '42' and amount != 3][label = empty]")
	require.NoError(t, err)
	sort := []schema.SortSpec{{Attribute: "Sales.Point_Position", Direction: schema.SortAsc}}

	stmt, args, err := q.SQL(schema.SQLiteBackend, sort)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "point" WHERE "point_chart" = ? AND "amount" <> ? AND ("label" IS NULL OR "label" = '') ORDER BY "point_position" ASC`, stmt)
	assert.Equal(t, []any{"42", 3.0}, args)

	stmt, _, err = q.SQL(schema.PostgreSQLBackend, nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "point" WHERE "point_chart" = $1 AND "amount" <> $2 AND ("label" IS NULL OR "label" = '')`, stmt)

	stmt, _, err = q.SQL(schema.MySQLBackend, []schema.SortSpec{{Attribute: "amount", Direction: schema.SortDesc}})
	require.NoError(t, err)
	assert.Contains(t, stmt, "FROM `point`")
	assert.Contains(t, stmt, "ORDER BY `amount` DESC")
}

func TestSQLRejectsBadSort(t *testing.T) {
	q, err := Parse("//Sales.Point")
	require.NoError(t, err)
	_, _, err = q.SQL(schema.SQLiteBackend, []schema.SortSpec{{Attribute: "a; DROP TABLE x"}})
	assert.Error(t, err)
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, 0, CompareValues(nil, nil))
	assert.Equal(t, -1, CompareValues(nil, 1))
	assert.Equal(t, 1, CompareValues("a", nil))
	assert.Equal(t, -1, CompareValues(2, "10"))
	assert.Equal(t, 1, CompareValues("b", "a"))
	assert.Equal(t, 1, CompareValues("b", 3))
}
