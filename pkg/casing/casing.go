// Package casing converts map keys between snake_case and camelCase.
package casing

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	separators = regexp.MustCompile(`[_\s]+`)
	upper      = regexp.MustCompile(`([A-Z])`)
)

// ToCamel converts a snake_case or space separated name to camelCase:
// "doc_id" becomes "docId" and "expiry date" becomes "expiryDate".
func ToCamel(s string) string {
	parts := separators.Split(s, -1)
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)

	var b strings.Builder
	b.WriteString(lower.String(parts[0]))
	for _, p := range parts[1:] {
		b.WriteString(title.String(p))
	}
	return b.String()
}

// ToSnake converts a camelCase name to snake_case: "expiryDate" becomes
// "expiry_date". Every upper case letter starts a new word.
func ToSnake(s string) string {
	s = upper.ReplaceAllString(s, "_$1")
	return strings.TrimLeft(cases.Lower(language.Und).String(s), "_")
}

// MapToCamel returns a copy of m with top-level keys in camelCase.
func MapToCamel(m map[string]any) map[string]any {
	return convertKeys(m, ToCamel)
}

// MapToSnake returns a copy of m with top-level keys in snake_case.
func MapToSnake(m map[string]any) map[string]any {
	return convertKeys(m, ToSnake)
}

func convertKeys(m map[string]any, fn func(string) string) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fn(k)] = v
	}
	return out
}
