package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// pascal converts a snake_case identifier to PascalCase. Segments that are
// already mixed-case keep their interior casing.
func pascal(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(titleCaser.String(p))
	}
	return b.String()
}

// camel converts a snake_case identifier to camelCase.
func camel(name string) string {
	p := pascal(name)
	if p == "" {
		return p
	}
	runes := []rune(p)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// callbackName derives the managed callback type name for a use site:
// the owning declaration plus the member (field or parameter) using it.
func callbackName(owner, member string) string {
	return pascal(owner) + pascal(member) + "Callback"
}

// ClassName derives the generated binding class name from the native
// library name. Java requires the file name to match it, so callers that
// place output files use this too.
func ClassName(library string) string {
	if name := pascal(library); name != "" {
		return name
	}
	return "Bindings"
}

// sanitizeID strips characters that cannot appear in a C macro name.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, ch := range id {
		if ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
