package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
	"github.com/hpungsan/hookcard/internal/llm"
	"github.com/hpungsan/hookcard/internal/ops"
	"github.com/hpungsan/hookcard/internal/sharelink"
	"github.com/hpungsan/hookcard/internal/webhook"
)

// Handlers contains HTTP route handlers for the card API.
type Handlers struct {
	cfg       *config.Config
	gen       llm.TextGenerator
	transport webhook.Transport
	logger    *zap.Logger
	version   string
}

// NewHandlers creates a new Handlers instance. A nil logger discards output.
func NewHandlers(cfg *config.Config, gen llm.TextGenerator, transport webhook.Transport, logger *zap.Logger, version string) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{cfg: cfg, gen: gen, transport: transport, logger: logger, version: version}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type sendRequest struct {
	WebhookURL string          `json:"webhookUrl"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Card       json.RawMessage `json:"card,omitempty"`
	Force      bool            `json:"force,omitempty"`
}

type cardRequest struct {
	Card    json.RawMessage `json:"card"`
	BaseURL string          `json:"baseUrl,omitempty"`
}

// cardFrom converts the card member of a request body. It is required.
func cardFrom(raw json.RawMessage) (card.Card, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return card.Card{}, errors.NewInvalidRequest("card is required")
	}
	return ops.CardFromJSON(raw)
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
	})
}

// HandleGenerate handles POST /api/generate: draft a card from a prompt.
// The response body is the card document itself.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[generateRequest](w, r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	result, err := ops.Generate(r.Context(), h.gen, h.cfg, ops.GenerateInput{Prompt: req.Prompt})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if len(result.Warnings) > 0 {
		loggerFrom(r.Context(), h.logger).Debug("generated card has warnings", zap.Strings("warnings", result.Warnings))
	}

	renderJSON(w, http.StatusOK, result.Card)
}

// HandleSend handles POST /api/send: post a card or raw payload to a webhook.
func (h *Handlers) HandleSend(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[sendRequest](w, r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	input := ops.SendInput{
		Endpoint: req.WebhookURL,
		Payload:  req.Payload,
		Force:    req.Force,
	}
	if len(bytes.TrimSpace(req.Card)) > 0 {
		c, err := ops.CardFromJSON(req.Card)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		input.Card = &c
	}

	result, err := ops.Send(r.Context(), h.transport, h.cfg, input)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleShare handles POST /api/share: encode a card into a share link.
func (h *Handlers) HandleShare(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[cardRequest](w, r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	c, err := cardFrom(req.Card)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	result, err := ops.Share(h.cfg, ops.ShareInput{Card: c, BaseURL: req.BaseURL})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleLoad handles GET /api/share?d=: decode a share token into a card.
func (h *Handlers) HandleLoad(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Load(ops.LoadInput{Token: r.URL.Query().Get(sharelink.QueryParam)})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result.Card)
}

// HandleQR handles GET /api/share/qr?d=&size=: PNG QR code of the share link.
func (h *Handlers) HandleQR(w http.ResponseWriter, r *http.Request) {
	size, err := parseIntParam(r, "size", sharelink.DefaultQRSize)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	png, err := ops.QR(h.cfg, ops.QRInput{
		Token: r.URL.Query().Get(sharelink.QueryParam),
		Size:  size,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	renderPNG(w, png)
}

// HandleExport handles POST /api/export?format=&webhook_url=: render a card
// as text. Output is never written to the server's disk.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[cardRequest](w, r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	c, err := cardFrom(req.Card)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	result, err := ops.Export(h.cfg, ops.ExportInput{
		Card:     c,
		Format:   r.URL.Query().Get("format"),
		Endpoint: r.URL.Query().Get("webhook_url"),
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleLint handles POST /api/lint: check a card against the limits.
func (h *Handlers) HandleLint(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[cardRequest](w, r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	c, err := cardFrom(req.Card)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, ops.Lint(h.cfg, ops.LintInput{Card: c}))
}

// HandleTemplates handles GET /api/templates: the starter gallery.
func (h *Handlers) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, ops.ListTemplates())
}

// HandleTemplate handles GET /api/templates/{name}: one template as a card.
func (h *Handlers) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	result, err := ops.GetTemplate(ops.GetTemplateInput{Name: r.PathValue("name")})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewInvalidRequest(name + " must be an integer")
	}
	return v, nil
}

// errorFields describes err for the log without exposing request data.
func errorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	if hErr, ok := errors.As(err); ok {
		fields = append(fields, zap.String("code", string(hErr.Code)), zap.Int("status", hErr.Status))
	}
	return fields
}
