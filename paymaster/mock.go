package paymaster

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	feez "github.com/feez-app/feez-go"
)

// MockClient synthesizes plausible estimates and operation hashes without
// network access. Artificial delays exercise the asynchronous code paths a
// live client would hit.
type MockClient struct {
	mu           sync.Mutex
	rng          *rand.Rand
	estimateWait time.Duration
	sponsorWait  time.Duration
}

// MockOption configures a MockClient.
type MockOption func(*MockClient)

// WithDelays overrides the artificial estimate/sponsor delays.
func WithDelays(estimate, sponsor time.Duration) MockOption {
	return func(m *MockClient) {
		m.estimateWait = estimate
		m.sponsorWait = sponsor
	}
}

// WithSeed makes the synthesized values deterministic.
func WithSeed(seed int64) MockOption {
	return func(m *MockClient) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// NewMockClient creates a stand-in paymaster with realistic latency.
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		estimateWait: 500 * time.Millisecond,
		sponsorWait:  time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EstimateGas returns a synthesized quote after the configured delay.
func (m *MockClient) EstimateGas(ctx context.Context, chainID int64, op feez.UserOperation) (*feez.GasEstimate, error) {
	if err := m.sleep(ctx, m.estimateWait); err != nil {
		return nil, err
	}

	const (
		baseGasNative = 0.0005
		usdcRate      = 0.5
		ethPriceUSD   = 3000
	)

	m.mu.Lock()
	jitter := m.rng.Float64() * 0.2
	m.mu.Unlock()

	return &feez.GasEstimate{
		GasFeeNative:     fmt.Sprintf("%.8f", baseGasNative*(1+jitter)),
		GasFeeUSDC:       fmt.Sprintf("%.2f", baseGasNative*ethPriceUSD*usdcRate),
		PaymasterAndData: zeroPaymasterAndData(),
	}, nil
}

// SponsorUserOperation returns a synthesized operation hash after the
// configured delay.
func (m *MockClient) SponsorUserOperation(ctx context.Context, chainID int64, op feez.UserOperation, sponsor bool) (*feez.SponsorResult, error) {
	if err := m.sleep(ctx, m.sponsorWait); err != nil {
		return nil, err
	}

	hash := make([]byte, 32)
	m.mu.Lock()
	m.rng.Read(hash)
	m.mu.Unlock()

	return &feez.SponsorResult{
		UserOpHash:       fmt.Sprintf("0x%x", hash),
		PaymasterAndData: zeroPaymasterAndData(),
		GasFeeUSDC:       "0.75",
	}, nil
}

func (m *MockClient) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return feez.NewOpError(feez.ErrCodePaymasterUnavailable,
			fmt.Sprintf("paymaster request cancelled: %v", ctx.Err()), nil)
	}
}

func zeroPaymasterAndData() string {
	data := make([]byte, 65)
	return fmt.Sprintf("0x%x", data)
}
