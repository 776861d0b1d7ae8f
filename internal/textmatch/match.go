// Package textmatch resolves a user-typed name against a list of candidates,
// ignoring case, accents and repeated whitespace.
package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, strips diacritics and collapses whitespace.
// "  Café  de OLLA " becomes "cafe de olla".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(out)), " ")
}

// Title capitalizes a name for display ("juan pérez" → "Juan Pérez").
func Title(s string) string {
	return cases.Title(language.Spanish).String(strings.Join(strings.Fields(s), " "))
}

// Result is the outcome of Find.
type Result[T any] struct {
	Match      *T
	Candidates []T // filled when the query is ambiguous
}

// Ambiguous reports whether several candidates matched and none exactly.
func (r Result[T]) Ambiguous() bool { return r.Match == nil && len(r.Candidates) > 1 }

// Found reports whether a single candidate was selected.
func (r Result[T]) Found() bool { return r.Match != nil }

// Find looks query up among items by name. An exact normalized match wins;
// otherwise a single substring match is selected; several substring matches
// are returned as candidates. An empty query matches nothing.
func Find[T any](items []T, name func(T) string, query string) Result[T] {
	q := Normalize(query)
	if q == "" {
		return Result[T]{}
	}

	var contains []T
	for i := range items {
		n := Normalize(name(items[i]))
		if n == q {
			return Result[T]{Match: &items[i]}
		}
		if strings.Contains(n, q) {
			contains = append(contains, items[i])
		}
	}

	if len(contains) == 1 {
		return Result[T]{Match: &contains[0]}
	}
	return Result[T]{Candidates: contains}
}
