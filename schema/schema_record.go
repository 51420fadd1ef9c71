package schema

import (
	"strings"
	"unicode"
)

// MapRecord is a host record backed by an attribute map.
type MapRecord struct {
	Key        string
	Attributes map[string]any
}

// NewMapRecord creates a record with the given id and attributes.
func NewMapRecord(id string, attrs map[string]any) MapRecord {
	return MapRecord{Key: id, Attributes: attrs}
}

// ID returns the stable record identifier.
func (r MapRecord) ID() string {
	return r.Key
}

// Get looks up an attribute by its configured name. Qualified names such as
// Sales.Point_Amount and camelCase names also resolve to their snake_case column.
func (r MapRecord) Get(attr string) any {
	if v, ok := r.Attributes[attr]; ok {
		return v
	}
	if v, ok := r.Attributes[SnakeCase(attr)]; ok {
		return v
	}
	return nil
}

// SnakeCase maps a host identifier to its storage name: the last dotted segment,
// with camel humps split by underscores and lowercased.
func SnakeCase(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
