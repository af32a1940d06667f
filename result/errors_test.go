package result

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		want       ErrorCategory
	}{
		{
			name: "redirect loop",
			err:  errors.New(`Get "https://github.com/x": stopped after 10 redirects`),
			want: CategoryRedirectLoop,
		},
		{name: "404 status", statusCode: 404, want: Category4xx},
		{name: "429 status", statusCode: 429, want: Category4xx},
		{name: "502 status", statusCode: 502, want: Category5xx},
		{name: "timeout error", err: fmt.Errorf("probe: %w", context.DeadlineExceeded), want: CategoryTimeout},
		{name: "success has no category", statusCode: 0, want: ""},
		{name: "3xx status is unknown", statusCode: 304, want: CategoryUnknown},
		{name: "200 status", statusCode: 200, want: ""},
		{name: "opaque error", err: errors.New("boom"), want: CategoryUnknown},
		{
			name: "connection refused",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			want: CategoryConnectionRefused,
		},
		{name: "dns timeout", err: &net.DNSError{Err: "i/o timeout", Name: "forge.invalid", IsTimeout: true}, want: CategoryTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err, tt.statusCode)
			if got != tt.want {
				t.Errorf("ClassifyError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyError_DNSFailure(t *testing.T) {
	dnsErr := &net.DNSError{
		Err:  "no such host",
		Name: "forge.invalid",
	}

	got := ClassifyError(fmt.Errorf("probe: %w", dnsErr), 0)
	if got != CategoryDNSFailure {
		t.Errorf("ClassifyError(DNSError) = %v, want %v", got, CategoryDNSFailure)
	}
}

func TestFormatCategory(t *testing.T) {
	tests := []struct {
		cat  ErrorCategory
		want string
	}{
		{CategoryTimeout, "Timeouts"},
		{CategoryDNSFailure, "DNS Failures"},
		{CategoryConnectionRefused, "Connection Refused"},
		{Category4xx, "Client Errors (4xx)"},
		{Category5xx, "Server Errors (5xx)"},
		{CategoryRedirectLoop, "Redirect Loops"},
		{CategoryUnknown, "Other Errors"},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			got := FormatCategory(tt.cat)
			if got != tt.want {
				t.Errorf("FormatCategory(%v) = %v, want %v", tt.cat, got, tt.want)
			}
		})
	}
}
