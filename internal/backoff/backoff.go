// Package backoff computes retry delays as a pure function of the attempt
// number, decoupled from any sleep call.
package backoff

import (
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// Policy produces jittered exponential delays.
type Policy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Default returns a policy with sane defaults for transient infrastructure
// errors such as an unreachable database.
func Default() Policy {
	return Policy{
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  5 * time.Second,
	}
}

// Delay returns the wait duration before retry number attempt (0-based).
// The result is half the capped exponential delay plus random jitter up to
// the same amount, so concurrent retriers spread out.
func (p Policy) Delay(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	half := time.Duration(delay / 2)
	return half + randomJitter(half)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
