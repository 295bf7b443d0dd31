package ops

import (
	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/sharelink"
)

// LoadInput contains parameters for the Load operation.
type LoadInput struct {
	Token string // bare token or full share link
}

// LoadOutput contains the result of the Load operation.
type LoadOutput struct {
	Card card.Card `json:"card"`
}

// Load decodes a token or share link. Malformed input fails with
// INVALID_TOKEN and produces no card.
func Load(input LoadInput) (*LoadOutput, error) {
	token, err := sharelink.ExtractToken(input.Token)
	if err != nil {
		return nil, err
	}

	c, err := sharelink.Decode(token)
	if err != nil {
		return nil, err
	}

	return &LoadOutput{Card: c}, nil
}
