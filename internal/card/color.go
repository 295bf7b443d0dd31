package card

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hexColorRegex = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// ParseColor converts "#RRGGBB" (marker optional) to its 24-bit integer value.
func ParseColor(hex string) (int, bool) {
	if !hexColorRegex.MatchString(hex) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// FormatColor converts a 24-bit integer back to "#RRGGBB".
func FormatColor(n int) string {
	return fmt.Sprintf("#%06X", n&0xFFFFFF)
}

// ValidColor reports whether s is a well-formed "#RRGGBB" value.
func ValidColor(s string) bool {
	return strings.HasPrefix(s, "#") && hexColorRegex.MatchString(s)
}

// normalizeColor keeps a valid color as given, adds a missing marker,
// and falls back to DefaultColor for anything else.
func normalizeColor(s string) string {
	s = strings.TrimSpace(s)
	if !hexColorRegex.MatchString(s) {
		return DefaultColor
	}
	if !strings.HasPrefix(s, "#") {
		return "#" + s
	}
	return s
}
