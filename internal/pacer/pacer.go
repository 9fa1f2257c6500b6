// Package pacer throttles a sequence of operations to a steady rate, so
// a demo scenario replays at a watchable speed instead of all at once.
package pacer

import (
	"context"
	"time"

	"github.com/yasserelgammal/rate-limiter/limiter"
	"github.com/yasserelgammal/rate-limiter/store"
)

// Pacer wraps a token bucket keyed by a single fixed identity, since a
// scenario replay has exactly one producer.
type Pacer struct {
	bucket *limiter.TokenBucket
	key    string
}

// New builds a pacer allowing opsPerSecond operations per second with the
// given burst allowance.
func New(opsPerSecond, burst int) (*Pacer, error) {
	st := store.NewMemoryStore(time.Minute)
	tb, err := limiter.NewTokenBucket(limiter.Config{
		Rate:     int64(opsPerSecond),
		Duration: time.Second,
		Burst:    int64(burst),
	}, st)
	if err != nil {
		return nil, err
	}
	return &Pacer{bucket: tb, key: "scenario"}, nil
}

// Wait blocks until a token is available or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	for {
		ok, err := p.bucket.Allow(p.key)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}
