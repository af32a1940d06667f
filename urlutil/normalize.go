package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Normalize takes a raw URL string and returns a normalized version.
// Normalization includes:
// - Lowercasing the scheme and host
// - Stripping fragments (#section)
// - Stripping trailing slashes (except for root path "/")
// - Preserving query parameters
//
// Canonical URLs reported by the remote service pass through Normalize
// before they are embedded in a rewritten link.
func Normalize(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("cannot normalize empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize URL %q: %w", rawURL, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("URL must have both scheme and host")
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	if parsed.Path != "/" && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String(), nil
}

// NormalizeHost validates a host base URL such as "https://github.com" and
// returns it without a trailing slash. Paths are kept so that self-hosted
// forges mounted under a prefix keep working.
func NormalizeHost(rawHost string) (string, error) {
	if !IsHTTPScheme(rawHost) {
		return "", fmt.Errorf("host %q must start with http:// or https://", rawHost)
	}
	normalized, err := Normalize(rawHost)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(normalized, "/"), nil
}
