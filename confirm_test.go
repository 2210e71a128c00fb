package feez

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedConfirmationsAlwaysConfirms(t *testing.T) {
	s := NewSimulatedConfirmations(
		WithConfirmationDelay(time.Millisecond, 2*time.Millisecond),
		WithSuccessRate(1.0),
	)

	for i := 0; i < 5; i++ {
		status, err := s.Await(context.Background(), "0xop")
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, status)
	}
}

func TestSimulatedConfirmationsAlwaysFails(t *testing.T) {
	s := NewSimulatedConfirmations(
		WithConfirmationDelay(time.Millisecond, 2*time.Millisecond),
		WithSuccessRate(0),
	)

	status, err := s.Await(context.Background(), "0xop")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)
}

func TestSimulatedConfirmationsDeterministicWithSeed(t *testing.T) {
	run := func() []TxStatus {
		s := NewSimulatedConfirmations(
			WithConfirmationDelay(time.Millisecond, 2*time.Millisecond),
			WithSuccessRate(0.5),
			WithRandSource(rand.NewSource(42)),
		)
		var out []TxStatus
		for i := 0; i < 10; i++ {
			status, err := s.Await(context.Background(), "0xop")
			require.NoError(t, err)
			out = append(out, status)
		}
		return out
	}

	assert.Equal(t, run(), run(), "a seeded source must replay the same outcomes")
}

func TestSimulatedConfirmationsContextCancellation(t *testing.T) {
	s := NewSimulatedConfirmations(
		WithConfirmationDelay(time.Minute, 2*time.Minute),
		WithSuccessRate(1.0),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	status, err := s.Await(ctx, "0xop")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StatusFailed, status)
}
