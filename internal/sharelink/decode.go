package sharelink

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/errors"
)

// Decode rebuilds a card from a token. Recognized keys are overlaid onto
// card.Default(); anything wrong-shaped inside the record is ignored.
// It fails with INVALID_TOKEN only when the token itself cannot be read.
//
// Tokens from older links (standard base64 with padding, wrapping a
// percent-encoded JSON string) decode as well.
func Decode(token string) (card.Card, error) {
	raw, err := decodeBase64(token)
	if err != nil {
		return card.Card{}, errors.NewInvalidToken("not base64")
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '%' {
		unescaped, err := url.PathUnescape(string(raw))
		if err != nil {
			return card.Card{}, errors.NewInvalidToken("bad percent-encoding")
		}
		raw = []byte(unescaped)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return card.Card{}, errors.NewInvalidToken("payload is not JSON")
	}
	rec, ok := v.(map[string]any)
	if !ok {
		return card.Card{}, errors.NewInvalidToken("payload is not an object")
	}

	return card.FromRecord(rec, card.LinkKeys), nil
}

// decodeBase64 accepts both alphabets, with or without padding.
// A space stands for a '+' that query parsing turned into one.
func decodeBase64(token string) ([]byte, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return nil, base64.CorruptInputError(0)
	}
	s = strings.ReplaceAll(s, " ", "+")
	s = strings.TrimRight(s, "=")
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	return base64.RawStdEncoding.DecodeString(s)
}
