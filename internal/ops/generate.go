package ops

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"regexp"
	"strings"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
	"github.com/hpungsan/hookcard/internal/llm"
)

// Instruction is the fixed system instruction sent with every prompt. The
// keys it names are the card document keys.
const Instruction = `You design Discord embeds. Turn the user's description into one embed and reply with a single JSON object and nothing else: no prose, no code fences.

Use exactly these keys:
{
  "title": "string",
  "description": "string; Discord markdown allowed: **bold**, *italic*, __underline__, ~~strikethrough~~, ` + "`code`" + `, [text](url), <#channel>, > quote",
  "url": "string or empty",
  "color": "#RRGGBB",
  "authorName": "string or empty",
  "authorIconUrl": "string or empty",
  "authorUrl": "string or empty",
  "thumbnailUrl": "string or empty",
  "imageUrl": "string or empty",
  "footerText": "string or empty",
  "footerIconUrl": "string or empty",
  "timestamp": "ISO-8601 string or empty",
  "fields": [{"name": "string", "value": "string", "inline": true}]
}

Guidelines:
- Pick a color that suits the mood and use emojis where they help.
- Use Discord markdown in the description and in field values.
- Leave image, thumbnail and icon URLs empty unless the user asks for images.
- Never return more than 25 fields.`

var (
	leadingFenceRegex  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFenceRegex = regexp.MustCompile("\r?\n?```$")
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	Prompt string
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	Card     card.Card `json:"card"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Generate drafts a card from a free-text prompt. The prompt is checked
// before the generator is called; the generator's reply is used only if it
// is a complete JSON object.
func Generate(ctx context.Context, gen llm.TextGenerator, cfg *config.Config, input GenerateInput) (*GenerateOutput, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return nil, errors.NewInvalidRequest("prompt is required")
	}
	if gen == nil {
		return nil, errors.NewGenerationUnavailable("")
	}

	raw, err := gen.Generate(ctx, Instruction, prompt)
	if err != nil {
		return nil, generationError(ctx, err)
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(StripFence(raw)), &record); err != nil || record == nil {
		return nil, errors.NewMalformedOutput("response is not a JSON object")
	}

	c := card.FromRecord(record, card.DocumentKeys)

	var warnings []string
	if len(c.Fields) > card.MaxFields {
		warnings = append(warnings, "dropped fields beyond the first 25")
		c.Fields = c.Fields[:card.MaxFields]
	}
	if lint := card.Lint(c, limitsFor(cfg)); !lint.Valid {
		warnings = append(warnings, lint.Problems...)
	}

	return &GenerateOutput{Card: c, Warnings: warnings}, nil
}

// StripFence removes one leading code fence (with optional language tag) and
// one trailing fence.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFenceRegex.ReplaceAllString(s, "")
	s = trailingFenceRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// generationError maps a generator failure onto the error vocabulary.
func generationError(ctx context.Context, err error) error {
	if stderrors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
		return errors.NewCancelled("generate")
	}

	f, ok := llm.AsFailure(err)
	if !ok {
		return errors.NewGenerationFailed("")
	}
	switch f.Kind {
	case llm.KindAuth:
		if stderrors.Is(f, llm.ErrNotConfigured) {
			return errors.NewGenerationUnavailable("")
		}
		return errors.NewGenerationUnavailable("API key rejected by the generation service")
	case llm.KindThrottled:
		return errors.NewRateLimited()
	case llm.KindTransport:
		return errors.NewGenerationFailed("service unreachable")
	default:
		return errors.NewGenerationFailed("")
	}
}
