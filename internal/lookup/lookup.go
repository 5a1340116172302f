// Package lookup resolves names against ordered keyword tables: an exact
// key match first, then the first key that is a substring of the name (or,
// for bidirectional tables, that contains it), then a fallback.
package lookup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Group maps several keys to one value. Groups are the on-disk form of a
// table.
type Group[V any] struct {
	Keys  []string `yaml:"keys" json:"keys"`
	Value V        `yaml:"value" json:"value"`
}

type row[V any] struct {
	key   string
	value V
}

// Table is an ordered keyword table.
type Table[V any] struct {
	rows          []row[V]
	exact         map[string]int
	bidirectional bool
}

// New builds a table from groups, preserving group and key order. When
// bidirectional is set, a key that contains the name also matches.
func New[V any](groups []Group[V], bidirectional bool) Table[V] {
	t := Table[V]{exact: make(map[string]int), bidirectional: bidirectional}
	for _, g := range groups {
		for _, k := range g.Keys {
			k = Normalize(k)
			if k == "" {
				continue
			}
			if _, dup := t.exact[k]; !dup {
				t.exact[k] = len(t.rows)
			}
			t.rows = append(t.rows, row[V]{key: k, value: g.Value})
		}
	}
	return t
}

// Len returns the number of keys in the table.
func (t Table[V]) Len() int {
	return len(t.rows)
}

// Lookup returns the value for name and whether any key matched.
func (t Table[V]) Lookup(name string) (V, bool) {
	var zero V
	name = Normalize(name)
	if name == "" {
		return zero, false
	}
	if i, ok := t.exact[name]; ok {
		return t.rows[i].value, true
	}
	for _, r := range t.rows {
		if strings.Contains(name, r.key) || (t.bidirectional && strings.Contains(r.key, name)) {
			return r.value, true
		}
	}
	return zero, false
}

// Resolve consults tables in order and returns the first match, or
// fallback when none matches.
func Resolve[V any](name string, fallback V, tables ...Table[V]) V {
	for _, t := range tables {
		if v, ok := t.Lookup(name); ok {
			return v
		}
	}
	return fallback
}

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s, strips diacritics, and collapses whitespace.
func Normalize(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
