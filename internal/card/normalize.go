package card

import (
	"regexp"
	"strings"
)

// slugSeparatorRegex matches runs of anything that is not a letter or digit
var slugSeparatorRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slug normalizes a display name for lookups:
// 1. Trim and lowercase
// 2. Collapse every run of non-alphanumerics to a single hyphen
// 3. Drop leading/trailing hyphens
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugSeparatorRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
