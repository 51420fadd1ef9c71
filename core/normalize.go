package core

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
)

// Normalize maps raw records to chart points in input order.
// X is passed through untouched. Y is parsed base 10 and becomes NaN when it is not numeric.
func Normalize(records []contract.RawRecord, xAttr, yAttr string, coercion schema.Coercion) []schema.NormalizedPoint {
	points := make([]schema.NormalizedPoint, 0, len(records))
	for _, r := range records {
		points = append(points, schema.NormalizedPoint{
			X: r.Get(xAttr),
			Y: ParseNumber(r.Get(yAttr), coercion),
		})
	}
	return points
}

// ParseNumber converts a host value to a number using the given coercion.
func ParseNumber(v any, coercion schema.Coercion) float64 {
	text, ok := numberText(v)
	if !ok {
		return math.NaN()
	}
	if coercion == schema.FloatCoercion {
		return parseFloatPrefix(text)
	}
	return parseIntPrefix(text)
}

// numberText renders a host value the way a string conversion would before parsing.
func numberText(v any) (string, bool) {
	switch n := v.(type) {
	case nil, bool:
		return "", false
	case string:
		return n, true
	case []byte:
		return string(n), true
	case int:
		return strconv.Itoa(n), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return formatFloat(float64(n)), true
	case float64:
		return formatFloat(n), true
	default:
		return schema.FormatX(v), true
	}
}

// formatFloat uses plain notation except for very large or very small magnitudes.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || (abs != 0 && abs < 1e-6) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseIntPrefix parses an optional sign and the longest run of decimal digits
// after leading whitespace. Trailing characters are ignored.
func parseIntPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s[:i], 64)
	if err != nil && !isRangeError(err) {
		return math.NaN()
	}
	return n
}

// parseFloatPrefix parses the longest decimal literal prefix after leading
// whitespace, including an optional fraction and exponent.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > expStart {
			end = j
		}
	}

	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil && !isRangeError(err) {
		return math.NaN()
	}
	return n
}

// isRangeError reports an overflow or underflow; ParseFloat still returns the signed limit.
func isRangeError(err error) bool {
	return errors.Is(err, strconv.ErrRange)
}
