// Package export turns cards into Discord webhook payloads and the text
// forms users paste into other tools.
package export

import "github.com/hpungsan/hookcard/internal/card"

// Payload is the webhook request body: one embed wrapped in "embeds".
type Payload struct {
	Embeds []Embed `json:"embeds"`
}

// Embed is the destination service's rich-message object. Every key is
// omitted when the card attribute behind it is empty.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`
	Color       *int    `json:"color,omitempty"`
	Author      *Author `json:"author,omitempty"`
	Thumbnail   *Image  `json:"thumbnail,omitempty"`
	Image       *Image  `json:"image,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

type Author struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type Image struct {
	URL string `json:"url"`
}

type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// Field always carries inline, matching what the editor sends.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// ToWirePayload builds the payload for c. It does not check lengths or the
// field count; run card.Lint first when that matters.
func ToWirePayload(c card.Card) Payload {
	e := Embed{
		Title:       c.Title,
		Description: c.Description,
		URL:         c.URL,
		Timestamp:   c.Timestamp,
	}

	if n, ok := card.ParseColor(c.Color); ok {
		e.Color = &n
	}

	if c.AuthorName != "" {
		e.Author = &Author{
			Name:    c.AuthorName,
			URL:     c.AuthorURL,
			IconURL: c.AuthorIconURL,
		}
	}
	if c.ThumbnailURL != "" {
		e.Thumbnail = &Image{URL: c.ThumbnailURL}
	}
	if c.ImageURL != "" {
		e.Image = &Image{URL: c.ImageURL}
	}
	if c.FooterText != "" {
		e.Footer = &Footer{
			Text:    c.FooterText,
			IconURL: c.FooterIconURL,
		}
	}

	if len(c.Fields) > 0 {
		e.Fields = make([]Field, len(c.Fields))
		for i, f := range c.Fields {
			e.Fields[i] = Field{Name: f.Name, Value: f.Value, Inline: f.Inline}
		}
	}

	return Payload{Embeds: []Embed{e}}
}
