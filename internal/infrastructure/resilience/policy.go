package resilience

import (
	"strings"
	"time"
)

// Config tunes retries and the per-operation circuit breaker shared by the
// NATS publisher and the Redis requirement store.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	// Operations overrides the retry budget by operation-name prefix. A nil
	// map gets DefaultOperationPolicies; an empty map disables overrides.
	Operations map[string]OperationPolicy

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

// OperationPolicy is the retry budget for one family of operations. Zero
// fields inherit the global value.
type OperationPolicy struct {
	RetryMaxAttempts int
	RetryMaxBackoff  time.Duration
}

// DefaultOperationPolicies keeps custom requirement reads and writes short,
// since they sit on the checklist request path, and gives event publishing a
// longer budget because a dropped event leaves the stored snapshot stale until
// the next change on that loan.
func DefaultOperationPolicies() map[string]OperationPolicy {
	return map[string]OperationPolicy{
		"redis.":       {RetryMaxAttempts: 2, RetryMaxBackoff: 200 * time.Millisecond},
		"nats.publish": {RetryMaxAttempts: 5, RetryMaxBackoff: time.Second},
	}
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,
		Operations:          DefaultOperationPolicies(),

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryInitialBackoff <= 0 {
		out.RetryInitialBackoff = def.RetryInitialBackoff
	}
	if out.RetryMaxBackoff <= 0 {
		out.RetryMaxBackoff = def.RetryMaxBackoff
	}
	if out.RetryMaxBackoff < out.RetryInitialBackoff {
		out.RetryMaxBackoff = out.RetryInitialBackoff
	}
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}
	if out.Operations == nil {
		out.Operations = def.Operations
	}

	return out
}

// retryBudget resolves the attempts and backoff ceiling for operation using
// the longest matching prefix in Operations.
func (c Config) retryBudget(operation string) (int, time.Duration) {
	attempts, maxBackoff := c.RetryMaxAttempts, c.RetryMaxBackoff
	matched := -1
	for prefix, policy := range c.Operations {
		if !strings.HasPrefix(operation, prefix) || len(prefix) <= matched {
			continue
		}
		matched = len(prefix)
		attempts, maxBackoff = c.RetryMaxAttempts, c.RetryMaxBackoff
		if policy.RetryMaxAttempts > 0 {
			attempts = policy.RetryMaxAttempts
		}
		if policy.RetryMaxBackoff > 0 {
			maxBackoff = policy.RetryMaxBackoff
		}
	}
	if maxBackoff < c.RetryInitialBackoff {
		maxBackoff = c.RetryInitialBackoff
	}
	return attempts, maxBackoff
}
