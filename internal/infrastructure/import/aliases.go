package csvimport

import (
	"strings"
	"unicode"
)

// MatchMode controls how a header is compared with an alias
type MatchMode int

const (
	// MatchExact compares trimmed, case-folded text
	MatchExact MatchMode = iota
	// MatchContains upper-cases both sides, drops all whitespace and accepts a
	// header that contains the alias
	MatchContains
)

// FieldAliases lists the header spellings accepted for one canonical field
type FieldAliases struct {
	Field    string
	Aliases  []string
	Required bool
}

// AliasTable maps canonical fields to accepted header aliases
type AliasTable struct {
	Mode   MatchMode
	Fields []FieldAliases
}

// ColumnMap is the result of resolving an AliasTable against real headers:
// canonical field -> header present in the file
type ColumnMap map[string]string

// Resolve matches headers once per import. Each field takes the first header
// matching any of its aliases, aliases tried in order. Missing required fields
// are returned by name.
func (t AliasTable) Resolve(headers []string) (ColumnMap, []string) {
	cols := make(ColumnMap, len(t.Fields))
	var missing []string

	for _, f := range t.Fields {
		header, ok := t.find(f.Aliases, headers)
		if ok {
			cols[f.Field] = header
			continue
		}
		if f.Required {
			missing = append(missing, f.Field)
		}
	}
	return cols, missing
}

func (t AliasTable) find(aliases, headers []string) (string, bool) {
	for _, alias := range aliases {
		want := t.normalize(alias)
		if want == "" {
			continue
		}
		for _, h := range headers {
			got := t.normalize(h)
			if t.Mode == MatchContains {
				if strings.Contains(got, want) {
					return h, true
				}
				continue
			}
			if got == want {
				return h, true
			}
		}
	}
	return "", false
}

func (t AliasTable) normalize(s string) string {
	if t.Mode == MatchContains {
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return unicode.ToUpper(r)
		}, s)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Has reports whether field was resolved
func (c ColumnMap) Has(field string) bool {
	_, ok := c[field]
	return ok
}

// Value returns the row's value for a canonical field, or "" if unresolved
func (c ColumnMap) Value(row *Row, field string) string {
	header, ok := c[field]
	if !ok {
		return ""
	}
	return row.Get(header)
}
