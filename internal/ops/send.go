package ops

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
	"github.com/hpungsan/hookcard/internal/export"
	"github.com/hpungsan/hookcard/internal/webhook"
)

// SendInput contains parameters for the Send operation.
// Exactly one of Card and Payload must be set.
type SendInput struct {
	Endpoint string
	Card     *card.Card
	Payload  json.RawMessage // raw wire payload, forwarded verbatim
	Force    bool            // send a card even when lint fails
}

// SendOutput contains the result of the Send operation.
type SendOutput struct {
	Success  bool     `json:"success"`
	Status   int      `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
}

// Send posts a card (as its wire payload) or a raw payload to a webhook.
// The endpoint is checked before anything else; an invalid one never
// reaches the transport.
func Send(ctx context.Context, t webhook.Transport, cfg *config.Config, input SendInput) (*SendOutput, error) {
	hasCard := input.Card != nil
	hasPayload := len(bytes.TrimSpace(input.Payload)) > 0

	if input.Endpoint == "" || (!hasCard && !hasPayload) {
		return nil, errors.NewInvalidRequest("webhook URL and payload required")
	}
	if hasCard && hasPayload {
		return nil, errors.NewInvalidRequest("provide either card or payload, not both")
	}
	if _, err := webhook.ValidateEndpoint(input.Endpoint); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.NewInternal(nil)
	}

	var (
		body     []byte
		warnings []string
	)
	if hasCard {
		lint := card.Lint(*input.Card, limitsFor(cfg))
		if !lint.Valid {
			if !input.Force {
				return nil, errors.NewCardInvalid(lint.Problems)
			}
			warnings = lint.Problems
		}
		data, err := export.Marshal(export.ToWirePayload(*input.Card), "")
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		body = data
	} else {
		var obj map[string]any
		if err := json.Unmarshal(input.Payload, &obj); err != nil || obj == nil {
			return nil, errors.NewInvalidRequest("payload must be a JSON object")
		}
		body = input.Payload
	}

	resp, err := webhook.Dispatch(ctx, t, input.Endpoint, body)
	if err != nil {
		return nil, err
	}

	return &SendOutput{
		Success:  true,
		Status:   resp.Status,
		Warnings: warnings,
	}, nil
}
