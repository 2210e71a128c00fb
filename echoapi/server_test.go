package echoapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feez "github.com/feez-app/feez-go"
	"github.com/feez-app/feez-go/httpapi"
)

const testSender = "0x1111111111111111111111111111111111111111"

type fakePaymaster struct{}

func (fakePaymaster) EstimateGas(ctx context.Context, chainID int64, op feez.UserOperation) (*feez.GasEstimate, error) {
	return &feez.GasEstimate{GasFeeNative: "0.0005", GasFeeUSDC: "0.75", PaymasterAndData: "0x00"}, nil
}

func (fakePaymaster) SponsorUserOperation(ctx context.Context, chainID int64, op feez.UserOperation, sponsor bool) (*feez.SponsorResult, error) {
	return &feez.SponsorResult{UserOpHash: "0xhash", PaymasterAndData: "0x00", GasFeeUSDC: "0.75"}, nil
}

type instantConfirm struct{}

func (instantConfirm) Await(ctx context.Context, opHash string) (feez.TxStatus, error) {
	return feez.StatusConfirmed, nil
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	store := feez.NewInMemoryStore()
	orch := feez.NewOrchestrator(fakePaymaster{}, store, instantConfirm{})

	e := echo.New()
	NewServer(orch, store, nil).RegisterRoutes(e)
	return e
}

func TestEchoEstimate(t *testing.T) {
	e := newTestEcho(t)

	body, err := json.Marshal(map[string]interface{}{
		"chainId": feez.ChainIDBase,
		"action":  "mint_nft",
		"sender":  testSender,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/estimate", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp httpapi.EstimateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "0.75", resp.GasFeeUSDC)
	assert.Equal(t, "ETH", resp.NativeToken)
}

func TestEchoEstimateRejectsInvalidBody(t *testing.T) {
	e := newTestEcho(t)

	req := httptest.NewRequest(http.MethodPost, "/api/estimate", bytes.NewReader([]byte(`{"chainId": 8453}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEchoTransactionsRequiresAddress(t *testing.T) {
	e := newTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEchoTransactionsLimitBounds(t *testing.T) {
	e := newTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?address="+testSender+"&limit=101", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
