package card

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// TimestampNow in a template card is replaced with the instantiation time.
const TimestampNow = "now"

// TimestampLayout matches the millisecond ISO-8601 form browsers produce.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Template is a named starter card from the built-in gallery.
type Template struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	Card        Card   `json:"card"`
}

type templateDoc struct {
	Name        string         `yaml:"name"`
	Emoji       string         `yaml:"emoji"`
	Description string         `yaml:"description"`
	Card        map[string]any `yaml:"card"`
}

var (
	templatesOnce sync.Once
	templates     []Template
	templatesErr  error
)

func loadTemplates() ([]Template, error) {
	templatesOnce.Do(func() {
		var docs []templateDoc
		if err := yaml.Unmarshal(templatesYAML, &docs); err != nil {
			templatesErr = fmt.Errorf("parse templates: %w", err)
			return
		}
		templates = make([]Template, 0, len(docs))
		for _, d := range docs {
			templates = append(templates, Template{
				Name:        d.Name,
				Slug:        Slug(d.Name),
				Emoji:       d.Emoji,
				Description: d.Description,
				Card:        FromRecord(d.Card, DocumentKeys),
			})
		}
	})
	return templates, templatesErr
}

// Templates returns the gallery in display order. Template cards still carry
// the TimestampNow sentinel; use Instantiate to get a card ready to edit.
func Templates() []Template {
	list, err := loadTemplates()
	if err != nil {
		// templates.yaml is compiled in; a parse failure is a build defect
		panic(err)
	}
	out := make([]Template, len(list))
	for i, t := range list {
		out[i] = t
		out[i].Card = t.Card.Clone()
	}
	return out
}

// FindTemplate looks a template up by display name or slug, ignoring case
// and punctuation.
func FindTemplate(name string) (Template, bool) {
	want := Slug(name)
	if want == "" {
		return Template{}, false
	}
	for _, t := range Templates() {
		if t.Slug == want {
			return t, true
		}
	}
	return Template{}, false
}

// Instantiate returns an independent copy of the template card with the
// timestamp sentinel resolved against now.
func (t Template) Instantiate(now time.Time) Card {
	c := t.Card.Clone()
	if c.Timestamp == TimestampNow {
		c.Timestamp = now.UTC().Format(TimestampLayout)
	}
	return c
}
