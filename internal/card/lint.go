package card

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Limits are the destination service's text caps, counted in characters.
// A zero limit disables that check.
type Limits struct {
	Title       int `json:"title,omitempty"`
	Description int `json:"description,omitempty"`
	Fields      int `json:"fields,omitempty"`
	FieldName   int `json:"field_name,omitempty"`
	FieldValue  int `json:"field_value,omitempty"`
	FooterText  int `json:"footer_text,omitempty"`
	AuthorName  int `json:"author_name,omitempty"`
	Total       int `json:"total,omitempty"`
}

// DefaultLimits returns the caps Discord enforces on a single embed.
func DefaultLimits() Limits {
	return Limits{
		Title:       256,
		Description: 4096,
		Fields:      MaxFields,
		FieldName:   256,
		FieldValue:  1024,
		FooterText:  2048,
		AuthorName:  256,
		Total:       6000,
	}
}

// LintResult contains the results of linting a card.
type LintResult struct {
	Valid      bool     `json:"valid"`
	Problems   []string `json:"problems,omitempty"`
	TotalChars int      `json:"total_chars"`
}

// Lint checks a card against limits without modifying it.
func Lint(c Card, limits Limits) *LintResult {
	result := &LintResult{Valid: true}
	add := func(format string, args ...any) {
		result.Problems = append(result.Problems, fmt.Sprintf(format, args...))
		result.Valid = false
	}

	if !c.HasContent() {
		add("card has no content")
	}

	checkLen := func(label, text string, max int) {
		if max > 0 && CountChars(text) > max {
			add("%s exceeds %d characters (%d)", label, max, CountChars(text))
		}
	}

	checkLen("title", c.Title, limits.Title)
	checkLen("description", c.Description, limits.Description)
	checkLen("footer text", c.FooterText, limits.FooterText)
	checkLen("author name", c.AuthorName, limits.AuthorName)

	if limits.Fields > 0 && len(c.Fields) > limits.Fields {
		add("too many fields: %d (max %d)", len(c.Fields), limits.Fields)
	}
	for i, f := range c.Fields {
		if strings.TrimSpace(f.Name) == "" {
			add("fields[%d] has an empty name", i)
		}
		if strings.TrimSpace(f.Value) == "" {
			add("fields[%d] has an empty value", i)
		}
		checkLen(fmt.Sprintf("fields[%d] name", i), f.Name, limits.FieldName)
		checkLen(fmt.Sprintf("fields[%d] value", i), f.Value, limits.FieldValue)
	}

	if c.Color != "" && !ValidColor(c.Color) {
		add("color %q is not a #RRGGBB value", c.Color)
	}
	if c.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, c.Timestamp); err != nil {
			add("timestamp %q is not ISO-8601", c.Timestamp)
		}
	}

	result.TotalChars = totalChars(c)
	if limits.Total > 0 && result.TotalChars > limits.Total {
		add("card text exceeds %d characters in total (%d)", limits.Total, result.TotalChars)
	}

	return result
}

// totalChars sums the text Discord counts toward its per-embed total.
func totalChars(c Card) int {
	n := CountChars(c.Title) + CountChars(c.Description) +
		CountChars(c.FooterText) + CountChars(c.AuthorName)
	for _, f := range c.Fields {
		n += CountChars(f.Name) + CountChars(f.Value)
	}
	return n
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}
