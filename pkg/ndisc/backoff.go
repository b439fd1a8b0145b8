package ndisc

import (
	"math/rand"
	"time"
)

// RFC 4861 §6.3.7 solicitation timing, with the draft-ietf multicast
// resilience adjustment: soliciting continues indefinitely but the
// interval is capped at maxRetransmitTime.
const (
	initialRetransmitTime = 4 * time.Second
	maxRetransmitTime     = 3600 * time.Second
)

// jitterFunc returns a uniform value in [0, 1). Injectable so tests can
// assert deterministic interval bounds.
type jitterFunc func() float64

type backoff struct {
	initial  time.Duration
	max      time.Duration
	jitter   jitterFunc
	current  time.Duration
	capped   bool
	attempts int
}

func newBackoff(initial, max time.Duration, jitter jitterFunc) *backoff {
	if jitter == nil {
		jitter = rand.Float64
	}
	return &backoff{initial: initial, max: max, jitter: jitter}
}

// Next draws the delay before the following solicitation:
//
//	first:      IRT + U(-0.1,0.1)*IRT
//	subsequent: 2*prev + U(-0.1,0.1)*prev
//	capped:     MRT + U(-0.1,0.1)*MRT, once 2*prev would exceed MRT
//
// Doubling applies to the previously drawn (jittered) interval. The cap
// is sticky until Reset.
func (b *backoff) Next() time.Duration {
	var next time.Duration
	switch {
	case b.current == 0:
		next = b.initial + b.spread(b.initial)
	case b.capped || 2*b.current > b.max:
		b.capped = true
		next = b.max + b.spread(b.max)
	default:
		next = 2*b.current + b.spread(b.current)
	}
	b.current = next
	b.attempts++
	return next
}

// spread is uniform in [-d/10, +d/10].
func (b *backoff) spread(d time.Duration) time.Duration {
	return time.Duration((b.jitter()*2 - 1) * float64(d) / 10)
}

// Current is the interval drawn by the last Next, zero after Reset.
func (b *backoff) Current() time.Duration {
	return b.current
}

func (b *backoff) Attempts() int {
	return b.attempts
}

// Reset returns the sequence to the initial case; called when a
// solicitation succeeds.
func (b *backoff) Reset() {
	b.current = 0
	b.capped = false
	b.attempts = 0
}
