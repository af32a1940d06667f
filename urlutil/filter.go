package urlutil

import (
	"net/url"
	"strings"
)

// IsSameDomain checks if targetURL belongs to the same domain as baseHost.
// Subdomains are considered same-domain (e.g., blog.example.com matches example.com).
func IsSameDomain(targetURL string, baseHost string) bool {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	host := parsed.Hostname()
	baseHost = strings.ToLower(baseHost)
	host = strings.ToLower(host)

	return host == baseHost || strings.HasSuffix(host, "."+baseHost)
}

// IsHTTPScheme returns true if the URL has an http or https scheme.
// Returns false for empty strings, non-HTTP schemes, or unparseable URLs.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// Hostname returns the hostname (without port) of rawURL, or rawURL itself
// when it cannot be parsed.
func Hostname(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parsed.Hostname()
}
