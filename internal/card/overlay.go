package card

import (
	"time"
)

// KeySet names the record key used for each card attribute.
type KeySet struct {
	Title         string
	Description   string
	URL           string
	Color         string
	AuthorName    string
	AuthorIconURL string
	AuthorURL     string
	ThumbnailURL  string
	ImageURL      string
	FooterText    string
	FooterIconURL string
	Timestamp     string
	Fields        string
}

// LinkKeys are the short keys used inside share tokens.
var LinkKeys = KeySet{
	Title:         "t",
	Description:   "d",
	URL:           "u",
	Color:         "c",
	AuthorName:    "an",
	AuthorIconURL: "ai",
	AuthorURL:     "au",
	ThumbnailURL:  "th",
	ImageURL:      "im",
	FooterText:    "ft",
	FooterIconURL: "fi",
	Timestamp:     "ts",
	Fields:        "f",
}

// DocumentKeys are the keys of the card document format, shared by card
// files, API bodies and the generation instruction.
var DocumentKeys = KeySet{
	Title:         "title",
	Description:   "description",
	URL:           "url",
	Color:         "color",
	AuthorName:    "authorName",
	AuthorIconURL: "authorIconUrl",
	AuthorURL:     "authorUrl",
	ThumbnailURL:  "thumbnailUrl",
	ImageURL:      "imageUrl",
	FooterText:    "footerText",
	FooterIconURL: "footerIconUrl",
	Timestamp:     "timestamp",
	Fields:        "fields",
}

// FromRecord builds a card by overlaying the recognized keys of record onto
// Default(). Missing keys keep their default, values of the wrong shape are
// treated as missing, and unknown keys are ignored. It never fails.
func FromRecord(record map[string]any, keys KeySet) Card {
	c := Default()
	if record == nil {
		return c
	}

	c.Title = stringValue(record[keys.Title])
	c.Description = stringValue(record[keys.Description])
	c.URL = stringValue(record[keys.URL])
	if color := stringValue(record[keys.Color]); color != "" {
		c.Color = normalizeColor(color)
	}
	c.AuthorName = stringValue(record[keys.AuthorName])
	c.AuthorIconURL = stringValue(record[keys.AuthorIconURL])
	c.AuthorURL = stringValue(record[keys.AuthorURL])
	c.ThumbnailURL = stringValue(record[keys.ThumbnailURL])
	c.ImageURL = stringValue(record[keys.ImageURL])
	c.FooterText = stringValue(record[keys.FooterText])
	c.FooterIconURL = stringValue(record[keys.FooterIconURL])
	c.Timestamp = stringValue(record[keys.Timestamp])
	c.Fields = fieldsValue(record[keys.Fields])

	return c
}

// stringValue returns v when it is a string, "" otherwise.
// A time.Time from a YAML decoder is kept as ISO text.
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		return s.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func boolValue(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// fieldsValue reads a list of field objects; non-object entries are skipped.
func fieldsValue(v any) []Field {
	list, ok := v.([]any)
	if !ok {
		return []Field{}
	}
	fields := make([]Field, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fields = append(fields, Field{
			Name:   stringValue(obj["name"]),
			Value:  stringValue(obj["value"]),
			Inline: boolValue(obj["inline"]),
		})
	}
	return fields
}
