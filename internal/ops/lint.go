package ops

import (
	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
)

// LintInput contains parameters for the Lint operation.
type LintInput struct {
	Card card.Card
}

// Lint checks a card against the configured caps.
func Lint(cfg *config.Config, input LintInput) *card.LintResult {
	return card.Lint(input.Card, limitsFor(cfg))
}
