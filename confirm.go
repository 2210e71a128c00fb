package feez

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// SimulatedConfirmations models eventual on-chain settlement with a bounded
// random delay and a configurable success rate. It stands in for genuine
// receipt polling; a production source implements the same contract against
// the target chain.
type SimulatedConfirmations struct {
	mu          sync.Mutex
	rng         *rand.Rand
	minDelay    time.Duration
	maxDelay    time.Duration
	successRate float64
}

// ConfirmationOption configures a SimulatedConfirmations source.
type ConfirmationOption func(*SimulatedConfirmations)

// WithConfirmationDelay bounds the simulated settlement delay.
func WithConfirmationDelay(min, max time.Duration) ConfirmationOption {
	return func(s *SimulatedConfirmations) {
		s.minDelay = min
		s.maxDelay = max
	}
}

// WithSuccessRate sets the probability of a confirmed outcome.
func WithSuccessRate(rate float64) ConfirmationOption {
	return func(s *SimulatedConfirmations) {
		s.successRate = rate
	}
}

// WithRandSource injects a deterministic randomness source for tests.
func WithRandSource(src rand.Source) ConfirmationOption {
	return func(s *SimulatedConfirmations) {
		s.rng = rand.New(src)
	}
}

// NewSimulatedConfirmations creates a source with a 5-15s delay and a 90%
// confirmation rate, matching realistic demo latency.
func NewSimulatedConfirmations(opts ...ConfirmationOption) *SimulatedConfirmations {
	s := &SimulatedConfirmations{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		minDelay:    5 * time.Second,
		maxDelay:    15 * time.Second,
		successRate: 0.9,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Await waits out the simulated settlement delay and reports the outcome.
// Returns the context error if the caller's deadline expires first.
func (s *SimulatedConfirmations) Await(ctx context.Context, opHash string) (TxStatus, error) {
	s.mu.Lock()
	delay := s.minDelay
	if span := s.maxDelay - s.minDelay; span > 0 {
		delay += time.Duration(s.rng.Int63n(int64(span)))
	}
	confirmed := s.rng.Float64() < s.successRate
	s.mu.Unlock()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return StatusFailed, ctx.Err()
	}

	if confirmed {
		return StatusConfirmed, nil
	}
	return StatusFailed, nil
}
