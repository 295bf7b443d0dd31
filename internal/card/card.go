package card

// DefaultColor is the brand blurple every new card starts with.
const DefaultColor = "#5865F2"

// MaxFields is the number of fields the destination accepts on one card.
const MaxFields = 25

// Field is a single name/value entry rendered in the card body.
type Field struct {
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	Inline bool   `json:"inline" yaml:"inline"`
}

// Card is a rich message as composed by the user.
// JSON tags are the document keys (see DocumentKeys).
type Card struct {
	// Title is the bold heading; linked to URL when URL is set
	Title string `json:"title"`

	// Description is the body text and may use the inline markup dialect
	Description string `json:"description"`

	// URL is the hyperlink attached to the title
	URL string `json:"url"`

	// Color is the accent bar color as #RRGGBB
	Color string `json:"color"`

	// AuthorName gates the whole author block
	AuthorName    string `json:"authorName"`
	AuthorIconURL string `json:"authorIconUrl"`
	AuthorURL     string `json:"authorUrl"`

	ThumbnailURL string `json:"thumbnailUrl"`
	ImageURL     string `json:"imageUrl"`

	// FooterText gates the footer object in the wire payload
	FooterText    string `json:"footerText"`
	FooterIconURL string `json:"footerIconUrl"`

	// Timestamp is an ISO-8601 string or empty
	Timestamp string `json:"timestamp"`

	// Fields never aliases another card's slice; use Clone before mutating
	Fields []Field `json:"fields"`
}

// Default returns a fresh card with every optional attribute empty.
func Default() Card {
	return Card{
		Color:  DefaultColor,
		Fields: []Field{},
	}
}

// Clone returns a deep copy so edits to the copy never reach the original.
func (c Card) Clone() Card {
	out := c
	out.Fields = make([]Field, len(c.Fields))
	copy(out.Fields, c.Fields)
	return out
}

// Equal reports structural equality. A nil and an empty field list are equal.
func (c Card) Equal(other Card) bool {
	if c.Title != other.Title ||
		c.Description != other.Description ||
		c.URL != other.URL ||
		c.Color != other.Color ||
		c.AuthorName != other.AuthorName ||
		c.AuthorIconURL != other.AuthorIconURL ||
		c.AuthorURL != other.AuthorURL ||
		c.ThumbnailURL != other.ThumbnailURL ||
		c.ImageURL != other.ImageURL ||
		c.FooterText != other.FooterText ||
		c.FooterIconURL != other.FooterIconURL ||
		c.Timestamp != other.Timestamp {
		return false
	}
	if len(c.Fields) != len(other.Fields) {
		return false
	}
	for i := range c.Fields {
		if c.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// HasContent reports whether the card would render anything visible.
func (c Card) HasContent() bool {
	return c.Title != "" ||
		c.Description != "" ||
		len(c.Fields) > 0 ||
		c.ImageURL != "" ||
		c.ThumbnailURL != "" ||
		c.AuthorName != "" ||
		c.FooterText != ""
}
