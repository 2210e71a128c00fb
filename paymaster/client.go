// Package paymaster provides clients for the external gas-sponsorship
// service: an authenticated HTTPS client for the live API and a
// deterministic stand-in for development and tests. Both satisfy
// feez.PaymasterClient and are selected by the caller at construction,
// never by runtime inspection.
package paymaster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	feez "github.com/feez-app/feez-go"
)

// DefaultBaseURL is the live paymaster API.
const DefaultBaseURL = "https://api.circle.com/v1/paymaster"

// Config configures the HTTP paymaster client.
type Config struct {
	// BaseURL is the paymaster API root (optional, defaults to the live API)
	BaseURL string

	// APIKey is the bearer credential attached to every request (required)
	APIKey string

	// HTTPClient is the HTTP client to use (optional)
	HTTPClient *http.Client

	// Timeout for requests (optional, defaults to 30s)
	Timeout time.Duration
}

// Client performs authenticated HTTPS calls to the remote paymaster API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an HTTP paymaster client. The API key is required.
func NewClient(config *Config) (*Client, error) {
	if config == nil || config.APIKey == "" {
		return nil, fmt.Errorf("paymaster API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		httpClient: httpClient,
	}, nil
}

type estimateGasRequest struct {
	ChainID       int64              `json:"chainId"`
	UserOperation feez.UserOperation `json:"userOperation"`
}

type sponsorRequest struct {
	ChainID       int64              `json:"chainId"`
	UserOperation feez.UserOperation `json:"userOperation"`
	Sponsor       bool               `json:"sponsor"`
}

// remoteError is the shape of a structured refusal from the paymaster.
type remoteError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// EstimateGas quotes the fee for a user operation.
func (c *Client) EstimateGas(ctx context.Context, chainID int64, op feez.UserOperation) (*feez.GasEstimate, error) {
	body, err := c.post(ctx, "/estimateGas", estimateGasRequest{
		ChainID:       chainID,
		UserOperation: op,
	})
	if err != nil {
		return nil, err
	}

	var estimate feez.GasEstimate
	if err := json.Unmarshal(body, &estimate); err != nil {
		return nil, feez.NewOpError(feez.ErrCodePaymasterRejected,
			fmt.Sprintf("malformed estimate response: %v", err), nil)
	}
	return &estimate, nil
}

// SponsorUserOperation submits the operation for sponsorship or
// USDC-charged execution.
func (c *Client) SponsorUserOperation(ctx context.Context, chainID int64, op feez.UserOperation, sponsor bool) (*feez.SponsorResult, error) {
	body, err := c.post(ctx, "/sponsorUserOperation", sponsorRequest{
		ChainID:       chainID,
		UserOperation: op,
		Sponsor:       sponsor,
	})
	if err != nil {
		return nil, err
	}

	var result feez.SponsorResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, feez.NewOpError(feez.ErrCodePaymasterRejected,
			fmt.Sprintf("malformed sponsor response: %v", err), nil)
	}
	return &result, nil
}

// post sends an authenticated request and returns the response body on
// 200. Transport failures map to paymaster_unavailable, non-200 responses
// to paymaster_rejected with the remote detail attached.
func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, feez.NewOpError(feez.ErrCodePaymasterUnavailable,
			fmt.Sprintf("paymaster request failed: %v", err), nil)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, feez.NewOpError(feez.ErrCodePaymasterUnavailable,
			fmt.Sprintf("failed to read paymaster response: %v", err), nil)
	}

	if resp.StatusCode != http.StatusOK {
		detail := string(responseBody)
		var remote remoteError
		if err := json.Unmarshal(responseBody, &remote); err == nil {
			if remote.Error != "" {
				detail = remote.Error
			} else if remote.Message != "" {
				detail = remote.Message
			}
		}
		return nil, feez.NewOpError(feez.ErrCodePaymasterRejected,
			fmt.Sprintf("paymaster rejected %s (%d): %s", path, resp.StatusCode, detail),
			map[string]interface{}{"statusCode": resp.StatusCode})
	}

	return responseBody, nil
}
