package mcp

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
	"github.com/hpungsan/hookcard/internal/llm"
	"github.com/hpungsan/hookcard/internal/ops"
	"github.com/hpungsan/hookcard/internal/webhook"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg       *config.Config
	gen       llm.TextGenerator
	transport webhook.Transport
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance. A nil logger discards output.
func NewHandlers(cfg *config.Config, gen llm.TextGenerator, transport webhook.Transport, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{cfg: cfg, gen: gen, transport: transport, logger: logger}
}

// Request types for each tool

// cardSource is embedded by requests that take a card either inline or from a file.
type cardSource struct {
	Card     json.RawMessage `json:"card,omitempty"`
	CardPath string          `json:"card_path,omitempty"`
}

// ShareRequest represents the arguments for card_share.
type ShareRequest struct {
	cardSource
	BaseURL string `json:"base_url,omitempty"`
	QRPath  string `json:"qr_path,omitempty"`
	QRSize  int    `json:"qr_size,omitempty"`
}

// LoadRequest represents the arguments for card_load.
type LoadRequest struct {
	Token string `json:"token"`
}

// ExportRequest represents the arguments for card_export.
type ExportRequest struct {
	cardSource
	Format     string `json:"format,omitempty"`
	WebhookURL string `json:"webhook_url,omitempty"`
	Path       string `json:"path,omitempty"`
	Save       bool   `json:"save,omitempty"`
}

// SendRequest represents the arguments for card_send.
type SendRequest struct {
	cardSource
	WebhookURL string          `json:"webhook_url"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Force      bool            `json:"force,omitempty"`
}

// GenerateRequest represents the arguments for card_generate.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// LintRequest represents the arguments for card_lint.
type LintRequest struct {
	cardSource
}

// TemplatesRequest represents the arguments for card_templates.
type TemplatesRequest struct {
	Name string `json:"name,omitempty"`
}

// resolve returns the card named by the request. required reports whether
// omitting both card and card_path is an error; otherwise it yields nil.
func (h *Handlers) resolve(src cardSource, required bool) (*card.Card, error) {
	hasInline := len(bytes.TrimSpace(src.Card)) > 0
	switch {
	case hasInline && src.CardPath != "":
		return nil, errors.NewInvalidRequest("provide either card or card_path, not both")
	case src.CardPath != "":
		c, err := ops.ReadCardFile(h.cfg, src.CardPath)
		if err != nil {
			return nil, err
		}
		return &c, nil
	case hasInline:
		c, err := ops.CardFromJSON(src.Card)
		if err != nil {
			return nil, err
		}
		return &c, nil
	case required:
		return nil, errors.NewInvalidRequest("card or card_path is required")
	default:
		return nil, nil
	}
}

// Handler implementations

// HandleShare handles the card_share tool call.
func (h *Handlers) HandleShare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ShareRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	c, err := h.resolve(input.cardSource, true)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Share(h.cfg, ops.ShareInput{
		Card:    *c,
		BaseURL: input.BaseURL,
		QRPath:  input.QRPath,
		QRSize:  input.QRSize,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLoad handles the card_load tool call.
func (h *Handlers) HandleLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LoadRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Load(ops.LoadInput{Token: input.Token})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the card_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	c, err := h.resolve(input.cardSource, true)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(h.cfg, ops.ExportInput{
		Card:     *c,
		Format:   input.Format,
		Endpoint: input.WebhookURL,
		Path:     input.Path,
		Save:     input.Save,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSend handles the card_send tool call.
func (h *Handlers) HandleSend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SendRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	c, err := h.resolve(input.cardSource, false)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Send(ctx, h.transport, h.cfg, ops.SendInput{
		Endpoint: input.WebhookURL,
		Card:     c,
		Payload:  input.Payload,
		Force:    input.Force,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGenerate handles the card_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Generate(ctx, h.gen, h.cfg, ops.GenerateInput{Prompt: input.Prompt})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLint handles the card_lint tool call.
func (h *Handlers) HandleLint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LintRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	c, err := h.resolve(input.cardSource, true)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ops.Lint(h.cfg, ops.LintInput{Card: *c}))
}

// HandleTemplates handles the card_templates tool call.
func (h *Handlers) HandleTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplatesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if input.Name == "" {
		return successResult(ops.ListTemplates())
	}

	result, err := ops.GetTemplate(ops.GetTemplateInput{Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if hErr, ok := errors.As(err); ok {
		message := hErr.Message
		// Keep wrapper context such as "fields[2]: ..." from fmt.Errorf chains
		if _, direct := err.(*errors.HookError); !direct && hErr.Code != errors.ErrInternal {
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    hErr.Code,
			"message": message,
			"status":  hErr.Status,
		}
		if hErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if hErr.Details != nil {
			errorObj["details"] = hErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
