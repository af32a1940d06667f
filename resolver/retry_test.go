package resolver

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()
	if policy.MaxAttempts != 15 {
		t.Errorf("expected MaxAttempts=15, got %d", policy.MaxAttempts)
	}
	if policy.BaseDelay != 2750*time.Millisecond {
		t.Errorf("expected BaseDelay=2750ms, got %v", policy.BaseDelay)
	}
	if policy.Step != 250*time.Millisecond {
		t.Errorf("expected Step=250ms, got %v", policy.Step)
	}
}

func TestFastRetryPolicy(t *testing.T) {
	policy := FastRetryPolicy()
	if policy.MaxAttempts != 2 {
		t.Errorf("expected MaxAttempts=2, got %d", policy.MaxAttempts)
	}
	if got := policy.Delay(1); got != 250*time.Millisecond {
		t.Errorf("Delay(1) = %v, want 250ms", got)
	}
}

func TestRetryPolicy_DelayIsLinear(t *testing.T) {
	policy := DefaultRetryPolicy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 3000 * time.Millisecond},
		{2, 3250 * time.Millisecond},
		{14, 6250 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := policy.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}

	policy.MaxDelay = 4 * time.Second
	if got := policy.Delay(14); got != 4*time.Second {
		t.Errorf("capped Delay(14) = %v, want 4s", got)
	}
}

func TestRetryPolicy_Decide(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Step: time.Second}

	tests := []struct {
		name      string
		kind      ProbeKind
		attempt   int
		want      Action
		delay     time.Duration
		exhausted bool
	}{
		{name: "success stops", kind: ProbeOK, attempt: 1, want: ActionSucceed},
		{name: "404 stops immediately", kind: ProbeNotFound, attempt: 1, want: ActionFail},
		{name: "disallowed stops immediately", kind: ProbeDisallowed, attempt: 1, want: ActionFail},
		{name: "transient retries", kind: ProbeTransient, attempt: 1, want: ActionRetry, delay: time.Second},
		{name: "transient backs off linearly", kind: ProbeTransient, attempt: 2, want: ActionRetry, delay: 2 * time.Second},
		{name: "ceiling exhausts", kind: ProbeTransient, attempt: 3, want: ActionFail, exhausted: true},
		{name: "success on last attempt", kind: ProbeOK, attempt: 3, want: ActionSucceed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Decide(ProbeResult{Kind: tt.kind}, tt.attempt)
			if got.Action != tt.want {
				t.Errorf("Action = %v, want %v", got.Action, tt.want)
			}
			if got.Delay != tt.delay {
				t.Errorf("Delay = %v, want %v", got.Delay, tt.delay)
			}
			if got.Exhausted != tt.exhausted {
				t.Errorf("Exhausted = %v, want %v", got.Exhausted, tt.exhausted)
			}
		})
	}
}

func TestRetryPolicy_Validate(t *testing.T) {
	if err := DefaultRetryPolicy().Validate(); err != nil {
		t.Errorf("default policy invalid: %v", err)
	}
	if err := (RetryPolicy{MaxAttempts: 0}).Validate(); err == nil {
		t.Error("expected error for zero attempts")
	}
	if err := (RetryPolicy{MaxAttempts: 1, Step: -time.Second}).Validate(); err == nil {
		t.Error("expected error for negative step")
	}
}

func TestPolicyForProfile(t *testing.T) {
	full, err := PolicyForProfile("")
	if err != nil || full != DefaultRetryPolicy() {
		t.Errorf("empty profile = %+v, %v", full, err)
	}
	fast, err := PolicyForProfile(ProfileFast)
	if err != nil || fast != FastRetryPolicy() {
		t.Errorf("fast profile = %+v, %v", fast, err)
	}
	if _, err := PolicyForProfile("turbo"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestSleep_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return promptly after cancellation")
	}
}

func TestSleep_Waits(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Sleep returned after %v, want >= 20ms", elapsed)
	}
}
