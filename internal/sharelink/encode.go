// Package sharelink converts cards to and from compact URL-safe tokens.
package sharelink

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/hpungsan/hookcard/internal/card"
)

var defaultColorValue, _ = card.ParseColor(card.DefaultColor)

// record is the minimal token body. Every key is omitted when its attribute
// holds the default, which keeps shared links short.
type record struct {
	Title         string       `json:"t,omitempty"`
	Description   string       `json:"d,omitempty"`
	URL           string       `json:"u,omitempty"`
	Color         string       `json:"c,omitempty"`
	AuthorName    string       `json:"an,omitempty"`
	AuthorIconURL string       `json:"ai,omitempty"`
	AuthorURL     string       `json:"au,omitempty"`
	ThumbnailURL  string       `json:"th,omitempty"`
	ImageURL      string       `json:"im,omitempty"`
	FooterText    string       `json:"ft,omitempty"`
	FooterIconURL string       `json:"fi,omitempty"`
	Timestamp     string       `json:"ts,omitempty"`
	Fields        []card.Field `json:"f,omitempty"`
}

// Encode returns the token for c: the JSON of its non-default attributes,
// base64url-encoded without padding.
func Encode(c card.Card) string {
	r := record{
		Title:         c.Title,
		Description:   c.Description,
		URL:           c.URL,
		AuthorName:    c.AuthorName,
		AuthorIconURL: c.AuthorIconURL,
		AuthorURL:     c.AuthorURL,
		ThumbnailURL:  c.ThumbnailURL,
		ImageURL:      c.ImageURL,
		FooterText:    c.FooterText,
		FooterIconURL: c.FooterIconURL,
		Timestamp:     c.Timestamp,
		Fields:        c.Fields,
	}
	// Same gate as the wire payload; a bare "RRGGBB" gains its marker
	if n, ok := card.ParseColor(c.Color); ok && n != defaultColorValue {
		r.Color = "#" + strings.TrimPrefix(c.Color, "#")
	}

	// Markup like <#channel> stays unescaped; record holds only strings and
	// bools, so Encode cannot fail
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(r)
	return base64.RawURLEncoding.EncodeToString(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
