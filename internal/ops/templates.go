package ops

import (
	"strings"
	"time"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/errors"
)

// TemplateSummary describes a template without its card.
type TemplateSummary struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// ListTemplatesOutput contains the result of the ListTemplates operation.
type ListTemplatesOutput struct {
	Templates []TemplateSummary `json:"templates"`
}

// ListTemplates returns the built-in gallery in display order.
func ListTemplates() *ListTemplatesOutput {
	list := card.Templates()
	out := &ListTemplatesOutput{Templates: make([]TemplateSummary, len(list))}
	for i, t := range list {
		out.Templates[i] = summarize(t)
	}
	return out
}

// GetTemplateInput contains parameters for the GetTemplate operation.
type GetTemplateInput struct {
	Name string    // display name or slug
	Now  time.Time // optional, default: time.Now()
}

// GetTemplateOutput contains the result of the GetTemplate operation.
type GetTemplateOutput struct {
	TemplateSummary
	Card card.Card `json:"card"`
}

// GetTemplate instantiates a template into a fresh card.
func GetTemplate(input GetTemplateInput) (*GetTemplateOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("template name is required")
	}

	t, ok := card.FindTemplate(name)
	if !ok {
		return nil, errors.NewNotFound("template", name)
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	return &GetTemplateOutput{
		TemplateSummary: summarize(t),
		Card:            t.Instantiate(now),
	}, nil
}

func summarize(t card.Template) TemplateSummary {
	return TemplateSummary{
		Name:        t.Name,
		Slug:        t.Slug,
		Emoji:       t.Emoji,
		Description: t.Description,
	}
}
