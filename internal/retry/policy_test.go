package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/seogen/internal/config"
)

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != config.RetryBackoffLinear {
		t.Fatalf("expected linear default mode got %s", p.Mode)
	}
	if p.MaxRetries != 0 {
		t.Fatalf("expected a single attempt by default, got %d retries", p.MaxRetries)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Mode != config.RetryBackoffFixed {
		t.Fatalf("expected fixed mode got %s", p.Mode)
	}
	if p.MaxRetries != 5 {
		t.Fatalf("expected maxRetries 5 got %d", p.MaxRetries)
	}
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	cases := []struct {
		name    string
		policy  Policy
		attempt int
		want    time.Duration
	}{
		{"fixed", NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, time.Second, 3), 3, 100 * time.Millisecond},
		{"linear", NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5), 2, 200 * time.Millisecond},
		{"linear capped", NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5), 4, 250 * time.Millisecond},
		{"exponential", NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, time.Second, 5), 3, 200 * time.Millisecond},
		{"exponential capped", NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 120*time.Millisecond, 5), 3, 120 * time.Millisecond},
		{"no retry", DefaultPolicy(), 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.policy.Delay(c.attempt); got != c.want {
				t.Fatalf("attempt %d: expected %v got %v", c.attempt, c.want, got)
			}
		})
	}
}

func TestDo(t *testing.T) {
	transient := errors.New("transient")
	permanent := errors.New("permanent")

	t.Run("single attempt by default", func(t *testing.T) {
		calls := 0
		retries, err := DefaultPolicy().Do(context.Background(), nil, func(context.Context) error {
			calls++
			return transient
		})
		if !errors.Is(err, transient) || calls != 1 || retries != 0 {
			t.Fatalf("expected one call, got calls=%d retries=%d err=%v", calls, retries, err)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
		calls := 0
		retries, err := p.Do(context.Background(), nil, func(context.Context) error {
			calls++
			if calls < 3 {
				return transient
			}
			return nil
		})
		if err != nil || retries != 2 {
			t.Fatalf("expected success after 2 retries, got retries=%d err=%v", retries, err)
		}
	})

	t.Run("stops on non-retryable", func(t *testing.T) {
		p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
		calls := 0
		_, err := p.Do(context.Background(), func(err error) bool { return err == transient }, func(context.Context) error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) || calls != 1 {
			t.Fatalf("expected a single call, got %d (%v)", calls, err)
		}
	})
}
