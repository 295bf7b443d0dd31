package ops

import (
	"encoding/json"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
)

// limitsFor returns the configured lint caps, or the defaults without config.
func limitsFor(cfg *config.Config) card.Limits {
	if cfg == nil {
		return card.DefaultLimits()
	}
	return cfg.LintLimits
}

// CardFromRecord converts an untyped card document (as decoded from an API
// body or tool argument) into a Card. Wrong-shaped keys fall back to defaults.
func CardFromRecord(record map[string]any) card.Card {
	return card.FromRecord(record, card.DocumentKeys)
}

// CardFromJSON converts a JSON card document into a Card. Only a body that is
// not a JSON object is an error.
func CardFromJSON(data json.RawMessage) (card.Card, error) {
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil || record == nil {
		return card.Card{}, errors.NewInvalidRequest("card must be a JSON object")
	}
	return CardFromRecord(record), nil
}
