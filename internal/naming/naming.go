// Package naming turns logical IR names into target-language identifiers.
// The generators treat these as opaque formatting helpers.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Use golang.org/x/text/cases for proper title casing (strings.Title is deprecated).
var titleCaser = cases.Title(language.Und, cases.NoLower)

// Words splits a logical name on delimiters and case boundaries.
// "widget-store", "widget_store", "WidgetStore" and "widget store" all split
// into ["widget", "store"].
func Words(name string) []string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		switch {
		case r == '-' || r == '_' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r):
			// Boundary before an upper rune that follows a lower rune, or
			// that starts a new word inside an acronym run (HTTPServer).
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				flush()
			}
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}

// UpperCamel renders a name as UpperCamelCase.
func UpperCamel(name string) string {
	var b strings.Builder
	for _, w := range Words(name) {
		b.WriteString(titleCaser.String(strings.ToLower(w)))
	}
	return b.String()
}

// LowerCamel renders a name as lowerCamelCase.
func LowerCamel(name string) string {
	upper := UpperCamel(name)
	if upper == "" {
		return ""
	}
	return strings.ToLower(upper[:1]) + upper[1:]
}

// KebabCase renders a name as kebab-case.
func KebabCase(name string) string {
	words := Words(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}
