package sharelink

import (
	"net/url"
	"strings"

	"github.com/hpungsan/hookcard/internal/errors"
)

// QueryParam is the query parameter that carries the token on a share link.
const QueryParam = "d"

// BuildURL sets the token parameter on the hosting page URL, keeping any
// other query parameters it already has.
func BuildURL(base, token string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errors.NewInvalidRequest("share base URL must be an absolute URL")
	}
	q := u.Query()
	q.Set(QueryParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExtractToken accepts either a bare token or a full share link and returns
// the token.
func ExtractToken(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewInvalidToken("empty")
	}
	if !strings.Contains(s, "://") && !strings.Contains(s, "?") {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", errors.NewInvalidToken("unreadable link")
	}
	token := u.Query().Get(QueryParam)
	if token == "" {
		return "", errors.NewInvalidToken("link has no " + QueryParam + " parameter")
	}
	return token, nil
}
