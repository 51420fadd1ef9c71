// Package query parses host query expressions of the form
// //Module.Entity[attr = 'value' and other > 3][...] and evaluates them
// against in-memory records or renders them as parameterized SQL.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/chartwire/schema"
)

// Operator is a comparison operator inside a constraint.
type Operator string

// All operators supported.
const (
	Eq  Operator = "="
	Neq Operator = "!="
	Lt  Operator = "<"
	Lte Operator = "<="
	Gt  Operator = ">"
	Gte Operator = ">="
)

// LiteralKind tags the right-hand side of a condition.
type LiteralKind int

// All literal kinds supported.
const (
	StringLiteral LiteralKind = iota
	NumberLiteral
	BoolLiteral
	EmptyLiteral
)

// Literal is a constant inside a constraint.
type Literal struct {
	Kind LiteralKind
	Str  string
	Num  float64
	Bool bool
}

// Value returns the literal as a driver-friendly Go value.
func (l Literal) Value() any {
	switch l.Kind {
	case NumberLiteral:
		return l.Num
	case BoolLiteral:
		return l.Bool
	case EmptyLiteral:
		return nil
	default:
		return l.Str
	}
}

// Condition is a single attribute comparison.
type Condition struct {
	Attribute string
	Op        Operator
	Value     Literal
}

// Column returns the SQL column name for the condition attribute.
func (c Condition) Column() string {
	return schema.SnakeCase(c.Attribute)
}

// Query is a parsed expression. All conditions are ANDed.
type Query struct {
	Entity     string
	Conditions []Condition
}

// Table returns the SQL table name for the queried entity.
func (q *Query) Table() string {
	return schema.SnakeCase(q.Entity)
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to splice into SQL.
func ValidIdentifier(name string) bool {
	return identifier.MatchString(name)
}

// Parse parses a query expression.
func Parse(expr string) (*Query, error) {
	p := &parser{src: expr}
	q, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", expr, err)
	}
	return q, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) parse() (*Query, error) {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], "//") {
		return nil, fmt.Errorf("expected '//' at offset %d", p.pos)
	}
	p.pos += 2

	entity := p.readName()
	if entity == "" {
		return nil, fmt.Errorf("expected entity name at offset %d", p.pos)
	}
	q := &Query{Entity: entity}
	if !ValidIdentifier(q.Table()) {
		return nil, fmt.Errorf("invalid entity name %q", entity)
	}

	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return q, nil
		}
		if p.src[p.pos] != '[' {
			return nil, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
		}
		p.pos++
		conds, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		q.Conditions = append(q.Conditions, conds...)
	}
}

// parseGroup parses the body of one [...] group up to and including ']'.
func (p *parser) parseGroup() ([]Condition, error) {
	var conds []Condition
	for {
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("unterminated constraint, expected ']'")
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return conds, nil
		}
		word := p.readName()
		if !strings.EqualFold(word, "and") {
			return nil, fmt.Errorf("expected 'and' or ']' at offset %d", p.pos)
		}
	}
}

func (p *parser) parseCondition() (Condition, error) {
	p.skipSpace()
	attr := p.readName()
	if attr == "" {
		return Condition{}, fmt.Errorf("expected attribute at offset %d", p.pos)
	}
	cond := Condition{Attribute: attr}
	if !ValidIdentifier(cond.Column()) {
		return Condition{}, fmt.Errorf("invalid attribute name %q", attr)
	}

	p.skipSpace()
	op, err := p.readOperator()
	if err != nil {
		return Condition{}, err
	}
	cond.Op = op

	p.skipSpace()
	lit, err := p.readLiteral()
	if err != nil {
		return Condition{}, err
	}
	cond.Value = lit

	if lit.Kind == EmptyLiteral && op != Eq && op != Neq {
		return Condition{}, fmt.Errorf("operator %s cannot compare with empty", op)
	}
	return cond, nil
}

func (p *parser) readOperator() (Operator, error) {
	rest := p.src[p.pos:]
	for _, op := range []Operator{Lte, Gte, Neq, Eq, Lt, Gt} {
		if strings.HasPrefix(rest, string(op)) {
			p.pos += len(op)
			return op, nil
		}
	}
	return "", fmt.Errorf("expected operator at offset %d", p.pos)
}

func (p *parser) readLiteral() (Literal, error) {
	if p.pos >= len(p.src) {
		return Literal{}, fmt.Errorf("expected literal at end of input")
	}
	if p.src[p.pos] == '\'' {
		return p.readString()
	}

	start := p.pos
	for p.pos < len(p.src) && !isDelimiter(p.src[p.pos]) {
		p.pos++
	}
	word := p.src[start:p.pos]
	switch strings.ToLower(word) {
	case "":
		return Literal{}, fmt.Errorf("expected literal at offset %d", start)
	case "true":
		return Literal{Kind: BoolLiteral, Bool: true}, nil
	case "false":
		return Literal{Kind: BoolLiteral, Bool: false}, nil
	case "empty":
		return Literal{Kind: EmptyLiteral}, nil
	}
	n, err := strconv.ParseFloat(word, 64)
	if err != nil {
		return Literal{}, fmt.Errorf("invalid literal %q at offset %d", word, start)
	}
	return Literal{Kind: NumberLiteral, Num: n}, nil
}

// readString reads a single-quoted string. A doubled quote is an escaped quote.
func (p *parser) readString() (Literal, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\'' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
				b.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return Literal{Kind: StringLiteral, Str: b.String()}, nil
		}
		b.WriteByte(c)
		p.pos++
	}
	return Literal{}, fmt.Errorf("unterminated string literal")
}

// readName reads a dotted name such as Sales.Point_Chart.
func (p *parser) readName() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '.' || c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func isDelimiter(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ']'
}
