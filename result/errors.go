package result

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// ErrorCategory represents the classification of a failed probe.
type ErrorCategory string

const (
	CategoryTimeout           ErrorCategory = "timeout"
	CategoryDNSFailure        ErrorCategory = "dns_failure"
	CategoryConnectionRefused ErrorCategory = "connection_refused"
	Category4xx               ErrorCategory = "4xx"
	Category5xx               ErrorCategory = "5xx"
	CategoryRedirectLoop      ErrorCategory = "redirect_loop"
	CategoryUnknown           ErrorCategory = "unknown"
)

var categoryLabels = map[ErrorCategory]string{
	CategoryTimeout:           "Timeouts",
	CategoryDNSFailure:        "DNS Failures",
	CategoryConnectionRefused: "Connection Refused",
	Category4xx:               "Client Errors (4xx)",
	Category5xx:               "Server Errors (5xx)",
	CategoryRedirectLoop:      "Redirect Loops",
}

// ClassifyError categorizes a probe from its transport error and HTTP status
// code. A clean 2xx response has no category.
func ClassifyError(err error, statusCode int) ErrorCategory {
	if err != nil {
		// The redirect cap aborts the request, so check it before the status.
		if strings.Contains(err.Error(), "stopped after") {
			return CategoryRedirectLoop
		}
		if cat := statusCategory(statusCode); cat != "" {
			return cat
		}
		return transportCategory(err)
	}
	if cat := statusCategory(statusCode); cat != "" {
		return cat
	}
	if statusCode == 0 || statusCode >= 200 && statusCode < 300 {
		return ""
	}
	return CategoryUnknown
}

func statusCategory(code int) ErrorCategory {
	switch {
	case code >= 500:
		return Category5xx
	case code >= 400:
		return Category4xx
	default:
		return ""
	}
}

func transportCategory(err error) ErrorCategory {
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			return CategoryTimeout
		}
		return CategoryDNSFailure
	case errors.Is(err, syscall.ECONNREFUSED), strings.Contains(err.Error(), "connection refused"):
		return CategoryConnectionRefused
	case errors.As(err, &netErr) && netErr.Timeout():
		return CategoryTimeout
	default:
		return CategoryUnknown
	}
}

// FormatCategory returns a human-readable label for an error category.
func FormatCategory(cat ErrorCategory) string {
	if label, ok := categoryLabels[cat]; ok {
		return label
	}
	return "Other Errors"
}
