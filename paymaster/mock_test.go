package paymaster

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feez "github.com/feez-app/feez-go"
)

func TestMockEstimateGas(t *testing.T) {
	m := NewMockClient(WithDelays(time.Millisecond, time.Millisecond), WithSeed(1))

	estimate, err := m.EstimateGas(context.Background(), 8453, testOp())
	require.NoError(t, err)
	assert.Equal(t, "0.75", estimate.GasFeeUSDC)
	assert.True(t, strings.HasPrefix(estimate.GasFeeNative, "0.000"),
		"native fee should stay near the base estimate")
	assert.Equal(t, "0x"+strings.Repeat("0", 130), estimate.PaymasterAndData)
}

func TestMockSponsorDeterministicWithSeed(t *testing.T) {
	hash := func() string {
		m := NewMockClient(WithDelays(time.Millisecond, time.Millisecond), WithSeed(7))
		result, err := m.SponsorUserOperation(context.Background(), 8453, testOp(), true)
		require.NoError(t, err)
		return result.UserOpHash
	}

	first := hash()
	assert.True(t, strings.HasPrefix(first, "0x"))
	assert.Len(t, first, 66, "operation hash must be 32 bytes of hex")
	assert.Equal(t, first, hash(), "seeded clients must replay the same hash")
}

func TestMockSponsorDistinctHashes(t *testing.T) {
	m := NewMockClient(WithDelays(time.Millisecond, time.Millisecond), WithSeed(7))

	a, err := m.SponsorUserOperation(context.Background(), 8453, testOp(), false)
	require.NoError(t, err)
	b, err := m.SponsorUserOperation(context.Background(), 8453, testOp(), false)
	require.NoError(t, err)
	assert.NotEqual(t, a.UserOpHash, b.UserOpHash)
}

func TestMockCancellation(t *testing.T) {
	m := NewMockClient(WithDelays(time.Minute, time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.EstimateGas(ctx, 8453, testOp())
	require.Error(t, err)
	assert.Equal(t, feez.ErrCodePaymasterUnavailable, feez.ErrorCode(err))

	_, err = m.SponsorUserOperation(ctx, 8453, testOp(), true)
	require.Error(t, err)
	assert.Equal(t, feez.ErrCodePaymasterUnavailable, feez.ErrorCode(err))
}
