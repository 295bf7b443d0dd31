package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
	"github.com/hpungsan/hookcard/internal/export"
	"github.com/hpungsan/hookcard/internal/webhook"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Card     card.Card
	Format   string // optional, default: json
	Endpoint string // optional, curl only; default: placeholder
	Path     string // optional, write the text to this file
	Save     bool   // write to a generated path under ~/.hookcard/exports when Path is empty
	Now      time.Time
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Format   string         `json:"format"`
	Text     string         `json:"text"`
	Payload  export.Payload `json:"payload"`
	Path     string         `json:"path,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Export renders a card as pretty JSON, a curl command or a compact payload.
// Lint problems are reported as warnings; the export is produced regardless.
func Export(cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = export.FormatJSON
	}

	var warnings []string
	if lint := card.Lint(input.Card, limitsFor(cfg)); !lint.Valid {
		warnings = append(warnings, lint.Problems...)
	}

	var (
		text string
		err  error
	)
	switch format {
	case export.FormatJSON:
		text, err = export.PrettyJSON(input.Card)
	case export.FormatPayload:
		text, err = export.CompactJSON(input.Card)
	case export.FormatCurl:
		if ep := strings.TrimSpace(input.Endpoint); ep != "" {
			if _, vErr := webhook.ValidateEndpoint(ep); vErr != nil {
				warnings = append(warnings, "endpoint is not a Discord webhook URL")
			}
		}
		text, err = export.CurlCommand(input.Card, input.Endpoint)
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("format must be one of %s", strings.Join(export.Formats, ", ")))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	out := &ExportOutput{
		Format:   format,
		Text:     text,
		Payload:  export.ToWirePayload(input.Card),
		Warnings: warnings,
	}

	path := input.Path
	if path == "" && input.Save {
		now := input.Now
		if now.IsZero() {
			now = time.Now()
		}
		path, err = defaultOutputPath(input.Card.Title, outputExt(format), now)
		if err != nil {
			return nil, err
		}
	}
	if path != "" {
		written, err := saveOutput(cfg, path, []byte(text+"\n"), ExportFile)
		if err != nil {
			return nil, err
		}
		out.Path = written
	}

	return out, nil
}

func outputExt(format string) string {
	if format == export.FormatCurl {
		return ".sh"
	}
	return ".json"
}
