package paymaster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feez "github.com/feez-app/feez-go"
)

func testOp() feez.UserOperation {
	return feez.UserOperation{
		Sender:   "0x1111111111111111111111111111111111111111",
		Nonce:    "0x1",
		CallData: "0xa9059cbb",
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)

	_, err = NewClient(&Config{})
	require.Error(t, err)

	c, err := NewClient(&Config{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}

func TestClientEstimateGas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/estimateGas", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req estimateGasRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(8453), req.ChainID)
		assert.Equal(t, "0x1111111111111111111111111111111111111111", req.UserOperation.Sender)

		json.NewEncoder(w).Encode(feez.GasEstimate{
			GasFeeNative:     "0.00052000",
			GasFeeUSDC:       "0.75",
			PaymasterAndData: "0x00",
		})
	}))
	defer server.Close()

	c, err := NewClient(&Config{BaseURL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)

	estimate, err := c.EstimateGas(context.Background(), 8453, testOp())
	require.NoError(t, err)
	assert.Equal(t, "0.75", estimate.GasFeeUSDC)
	assert.Equal(t, "0.00052000", estimate.GasFeeNative)
}

func TestClientSponsorUserOperation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sponsorUserOperation", r.URL.Path)

		var req sponsorRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Sponsor)

		json.NewEncoder(w).Encode(feez.SponsorResult{
			UserOpHash:       "0xdeadbeef",
			PaymasterAndData: "0x00",
			GasFeeUSDC:       "0.75",
		})
	}))
	defer server.Close()

	c, err := NewClient(&Config{BaseURL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)

	result, err := c.SponsorUserOperation(context.Background(), 8453, testOp(), true)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", result.UserOpHash)
}

func TestClientRejectionCarriesRemoteDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "operation exceeds sponsorship policy"})
	}))
	defer server.Close()

	c, err := NewClient(&Config{BaseURL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)

	_, err = c.EstimateGas(context.Background(), 8453, testOp())
	require.Error(t, err)
	assert.Equal(t, feez.ErrCodePaymasterRejected, feez.ErrorCode(err))
	assert.Contains(t, err.Error(), "operation exceeds sponsorship policy")

	var opErr *feez.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, http.StatusUnprocessableEntity, opErr.Details["statusCode"])
}

func TestClientTransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c, err := NewClient(&Config{BaseURL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)

	_, err = c.SponsorUserOperation(context.Background(), 8453, testOp(), false)
	require.Error(t, err)
	assert.Equal(t, feez.ErrCodePaymasterUnavailable, feez.ErrorCode(err))
}

func TestClientContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c, err := NewClient(&Config{BaseURL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = c.EstimateGas(ctx, 8453, testOp())
	require.Error(t, err)
	assert.Equal(t, feez.ErrCodePaymasterUnavailable, feez.ErrorCode(err))
}
