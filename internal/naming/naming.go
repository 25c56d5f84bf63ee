// Package naming holds the pure string transforms shared by the
// synthesizers: word splitting, snake/Pascal conversion, and Rust
// reserved-word escaping.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Words splits an identifier into its words. Boundaries are separator
// characters, lower-to-upper transitions, acronym ends, and transitions
// between letters and digits, so "base64uuid" splits into base/64/uuid and
// "HTTPServer" into HTTP/Server.
func Words(s string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.' || r == '/':
			flush()
			continue
		case len(current) > 0:
			prev := current[len(current)-1]
			if boundary(prev, r, peek(runes, i+1)) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

func peek(runes []rune, i int) rune {
	if i < len(runes) {
		return runes[i]
	}
	return 0
}

func boundary(prev, cur, next rune) bool {
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(next):
		// end of an acronym run
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(cur):
		return true
	case unicode.IsDigit(prev) && unicode.IsLetter(cur):
		return true
	}
	return false
}

// ToSnake converts an identifier to snake_case.
func ToSnake(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// ToPascal converts an identifier to PascalCase.
func ToPascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(titleCaser.String(strings.ToLower(w)))
	}
	return b.String()
}

// rustKeywords covers Rust's strict and reserved keywords.
var rustKeywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true,
	"crate": true, "dyn": true, "else": true, "enum": true,
	"extern": true, "false": true, "fn": true, "for": true,
	"if": true, "impl": true, "in": true, "let": true,
	"loop": true, "match": true, "mod": true, "move": true,
	"mut": true, "pub": true, "ref": true, "return": true,
	"self": true, "Self": true, "static": true, "struct": true,
	"super": true, "trait": true, "true": true, "type": true,
	"unsafe": true, "use": true, "where": true, "while": true,
	"async": true, "await": true, "abstract": true, "become": true,
	"box": true, "do": true, "final": true, "macro": true,
	"override": true, "priv": true, "typeof": true, "unsized": true,
	"virtual": true, "yield": true, "try": true,
}

// IsRustKeyword reports whether s is a Rust reserved word.
func IsRustKeyword(s string) bool { return rustKeywords[s] }

// EscapeRustKeyword appends a disambiguating underscore when the
// identifier collides with a Rust reserved word.
func EscapeRustKeyword(s string) string {
	if IsRustKeyword(s) {
		return s + "_"
	}
	return s
}
