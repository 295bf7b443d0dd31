// Package webhook validates Discord webhook endpoints and posts payloads to them.
package webhook

import (
	"regexp"
	"strings"

	"github.com/hpungsan/hookcard/internal/errors"
)

// endpointRegex: HTTPS, a known webhook host, numeric id, token of
// letters, digits, '-' and '_'. Nothing may follow the token.
var endpointRegex = regexp.MustCompile(`^https://(discord\.com|discordapp\.com)/api/webhooks/[0-9]+/[A-Za-z0-9_-]+$`)

// ValidateEndpoint returns the trimmed endpoint, or INVALID_ENDPOINT.
func ValidateEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if !endpointRegex.MatchString(endpoint) {
		return "", errors.NewInvalidEndpoint()
	}
	return endpoint, nil
}
