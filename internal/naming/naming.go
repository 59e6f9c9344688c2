// Package naming converts identifiers between case styles. It backs the
// camel, pascal, snake and kebab filters.
package naming

import (
	"strings"
	"unicode"
)

// Words splits s into words. Separators (underscore, hyphen, dot, slash
// and whitespace) end a word, as does a lower-to-upper transition. A run of
// upper case letters stays one word, except that its last letter starts
// the next word when a lower case letter follows.
//
// Example: "userProfile" -> ["user", "Profile"]
// Example: "APIClient_v2" -> ["API", "Client", "v2"]
func Words(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	rs := []rune(s)
	for i, r := range rs {
		if isSeparator(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == '/' || unicode.IsSpace(r)
}

// ToPascalCase converts a string to PascalCase. Letters after the first
// in each word keep their case.
// Example: "user_profile" -> "UserProfile"
// Example: "api client" -> "ApiClient"
func ToPascalCase(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(ToTitleCase(w))
	}
	return b.String()
}

// ToCamelCase converts a string to camelCase. The first word is lower
// cased entirely, so a leading acronym does not keep its capitals.
// Example: "user_profile" -> "userProfile"
// Example: "APIClient" -> "apiClient"
func ToCamelCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(ToTitleCase(w))
	}
	return b.String()
}

// ToSnakeCase converts a string to snake_case.
// Example: "UserProfile" -> "user_profile"
// Example: "APIClient" -> "api_client"
func ToSnakeCase(s string) string {
	return joinLower(s, "_")
}

// ToKebabCase converts a string to kebab-case.
// Example: "UserProfile" -> "user-profile"
func ToKebabCase(s string) string {
	return joinLower(s, "-")
}

func joinLower(s, sep string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}

// ToTitleCase converts the first letter to uppercase.
// Example: "hello" -> "Hello"
func ToTitleCase(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
