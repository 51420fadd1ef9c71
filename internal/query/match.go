package query

import (
	"strconv"
	"strings"

	"github.com/huangsam/chartwire/schema"
)

// Match reports whether a record satisfies every condition.
// get is called with the raw attribute name from the expression.
func (q *Query) Match(get func(attr string) any) bool {
	for _, c := range q.Conditions {
		if !c.matches(get(c.Attribute)) {
			return false
		}
	}
	return true
}

func (c Condition) matches(v any) bool {
	switch c.Value.Kind {
	case EmptyLiteral:
		empty := v == nil || schema.FormatX(v) == ""
		if c.Op == Eq {
			return empty
		}
		return !empty

	case BoolLiteral:
		b, ok := toBool(v)
		if !ok {
			return c.Op == Neq
		}
		switch c.Op {
		case Eq:
			return b == c.Value.Bool
		case Neq:
			return b != c.Value.Bool
		default:
			return false
		}

	case NumberLiteral:
		n, ok := toNumber(v)
		if !ok {
			return c.Op == Neq
		}
		return compare(cmpFloat(n, c.Value.Num), c.Op)

	default:
		if v == nil {
			return c.Op == Neq
		}
		return compare(strings.Compare(schema.FormatX(v), c.Value.Str), c.Op)
	}
}

func compare(order int, op Operator) bool {
	switch op {
	case Eq:
		return order == 0
	case Neq:
		return order != 0
	case Lt:
		return order < 0
	case Lte:
		return order <= 0
	case Gt:
		return order > 0
	case Gte:
		return order >= 0
	}
	return false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case nil, bool:
		return 0, false
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(schema.FormatX(v)), 64)
		return f, err == nil
	}
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int:
		return b != 0, true
	case int64:
		return b != 0, true
	case nil:
		return false, false
	default:
		parsed, err := strconv.ParseBool(schema.FormatX(v))
		return parsed, err == nil
	}
}

// CompareValues orders two attribute values for sorting. Missing values sort
// first, numeric values compare numerically and everything else as text.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			return cmpFloat(x, y)
		}
	}
	return strings.Compare(schema.FormatX(a), schema.FormatX(b))
}
