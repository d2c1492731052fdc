package supervisor

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// delayPolicy yields the geometric retry ladder initial, initial*m, initial*m^2, ...
type delayPolicy struct {
	b    *backoff.ExponentialBackOff
	next time.Duration
}

func newDelayPolicy(initial time.Duration, multiplier float64, maxDelay time.Duration) *delayPolicy {
	if maxDelay <= 0 {
		maxDelay = time.Duration(math.MaxInt64)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.Multiplier = multiplier
	b.MaxInterval = maxDelay
	b.RandomizationFactor = 0
	b.Reset()

	return &delayPolicy{
		b:    b,
		next: b.NextBackOff(),
	}
}

// Current returns the delay the next retry will use.
func (p *delayPolicy) Current() time.Duration {
	return p.next
}

// Advance returns the current delay and grows it for the following cycle.
func (p *delayPolicy) Advance() time.Duration {
	d := p.next
	p.next = p.b.NextBackOff()
	return d
}
