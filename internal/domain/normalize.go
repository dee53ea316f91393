package domain

import (
	"regexp"
	"strings"
)

var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// NormalizeIngredientName canonicalizes a user-entered ingredient name so
// "Chicken Breast" and "chicken  breast" resolve to the same product:
// trimmed, lowercased, internal whitespace collapsed.
func NormalizeIngredientName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return multipleSpacesRegex.ReplaceAllString(name, " ")
}
