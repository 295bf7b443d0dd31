package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/hookcard/internal/card"
)

// PlaceholderEndpoint stands in for the webhook URL when none is given.
const PlaceholderEndpoint = "YOUR_WEBHOOK_URL"

// Format names accepted by the export operation.
const (
	FormatJSON    = "json"
	FormatCurl    = "curl"
	FormatPayload = "payload"
)

// Formats lists the valid export formats.
var Formats = []string{FormatJSON, FormatCurl, FormatPayload}

// Marshal serializes v without HTML escaping, so channel references such as
// <#rules> stay readable. indent "" gives compact output.
func Marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// PrettyJSON is the payload for c indented by two spaces.
func PrettyJSON(c card.Card) (string, error) {
	data, err := Marshal(ToWirePayload(c), "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CompactJSON is the payload for c on a single line.
func CompactJSON(c card.Card) (string, error) {
	data, err := Marshal(ToWirePayload(c), "")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CurlCommand renders a POSIX shell command that posts the payload for c to
// endpoint. An empty endpoint becomes PlaceholderEndpoint.
func CurlCommand(c card.Card, endpoint string) (string, error) {
	body, err := CompactJSON(c)
	if err != nil {
		return "", err
	}
	return curlText(endpoint, body), nil
}

// curlText is shared by CurlCommand and raw payload exports.
func curlText(endpoint, body string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = PlaceholderEndpoint
	}

	var b strings.Builder
	b.WriteString("curl -X POST ")
	b.WriteString(ShellQuote(endpoint))
	b.WriteString(" \\\n  -H \"Content-Type: application/json\" \\\n  -d ")
	b.WriteString(ShellQuote(body))
	return b.String()
}

// RawCurlCommand is CurlCommand for a payload that is already serialized.
func RawCurlCommand(body []byte, endpoint string) string {
	return curlText(endpoint, string(body))
}

// ShellQuote wraps s in single quotes; an embedded ' is closed, escaped and
// reopened as '\''.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
