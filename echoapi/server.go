// Package echoapi exposes the same REST boundary as httpapi over the echo
// framework, for deployments already standardized on echo.
package echoapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	feez "github.com/feez-app/feez-go"
	"github.com/feez-app/feez-go/httpapi"
)

const maxListLimit = 100

// Server holds the echo handlers for the REST boundary.
type Server struct {
	orch  *feez.Orchestrator
	store feez.TransactionStore
	log   *zap.Logger
}

// NewServer creates the echo boundary over an orchestrator and a read-only
// view of its store.
func NewServer(orch *feez.Orchestrator, store feez.TransactionStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{orch: orch, store: store, log: log}
}

// RegisterRoutes attaches the API routes to an echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/estimate", s.handleEstimate)
	api.POST("/execute", s.handleExecute)
	api.GET("/transactions", s.handleTransactions)
	api.GET("/analytics", s.handleAnalytics)
}

func (s *Server) handleEstimate(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read request body"})
	}
	if err := httpapi.ValidateEstimateBody(body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var req httpapi.EstimateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request body"})
	}

	estimate, profile, err := s.orch.Estimate(c.Request().Context(), feez.ActionRequest{
		ChainID:   req.ChainID,
		Action:    feez.ActionKind(req.Action),
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Amount:    req.Amount,
	})
	if err != nil {
		return s.writeError(c, err, "Failed to estimate gas fees")
	}

	return c.JSON(http.StatusOK, httpapi.EstimateResponse{
		GasFeeNative:     estimate.GasFeeNative,
		GasFeeUSDC:       estimate.GasFeeUSDC,
		NativeToken:      profile.NativeToken,
		PaymasterAndData: estimate.PaymasterAndData,
	})
}

func (s *Server) handleExecute(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read request body"})
	}
	if err := httpapi.ValidateExecuteBody(body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var req httpapi.ExecuteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request body"})
	}

	result, err := s.orch.Submit(c.Request().Context(), feez.ActionRequest{
		ChainID:   req.ChainID,
		Action:    feez.ActionKind(req.Action),
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Amount:    req.Amount,
	}, feez.GasEstimate{
		GasFeeNative: req.Estimate.GasFeeNative,
		GasFeeUSDC:   req.Estimate.GasFeeUSDC,
	}, req.Sponsored)
	if err != nil {
		return s.writeError(c, err, "Failed to execute transaction")
	}

	return c.JSON(http.StatusOK, httpapi.ExecuteResponse{
		TxHash:           result.TxHash,
		GasFeeUSDC:       result.GasFeeUSDC,
		PaymasterAndData: result.PaymasterAndData,
		TransactionID:    result.TransactionID,
		Sponsored:        result.Sponsored,
	})
}

func (s *Server) handleTransactions(c echo.Context) error {
	address := c.QueryParam("address")
	if address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Address parameter is required"})
	}

	limit, err := atoiDefault(c.QueryParam("limit"), 10)
	if err != nil || limit <= 0 || limit > maxListLimit {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit or offset. Limit must be <= 100"})
	}
	offset, err := atoiDefault(c.QueryParam("offset"), 0)
	if err != nil || offset < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit or offset. Limit must be <= 100"})
	}

	filter := feez.TransactionFilter{
		WalletAddress: strings.ToLower(address),
		Limit:         limit,
		Offset:        offset,
	}
	if raw := c.QueryParam("chainId"); raw != "" {
		if chainID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if profile := feez.ResolveChain(chainID); feez.ChainIDByName(profile.Name) != 0 {
				filter.Chain = profile.Name
			}
		}
	}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = feez.TxStatus(status)
	}

	records, total, err := s.store.List(c.Request().Context(), filter)
	if err != nil {
		return s.writeError(c, err, "Failed to fetch transactions")
	}

	views := make([]httpapi.TransactionView, 0, len(records))
	for _, rec := range records {
		chainID := feez.ChainIDByName(rec.Chain)
		if chainID == 0 {
			chainID = feez.ChainIDEthereum
		}
		views = append(views, httpapi.TransactionView{
			TransactionRecord: rec,
			ChainID:           chainID,
			ExplorerURL:       feez.ExplorerTxURL(chainID, rec.TxHash),
		})
	}

	return c.JSON(http.StatusOK, httpapi.TransactionsResponse{
		Transactions: views,
		Pagination: httpapi.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+limit) < total,
		},
	})
}

func (s *Server) handleAnalytics(c echo.Context) error {
	address := c.QueryParam("address")
	if address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Address is required"})
	}

	days := 30
	switch c.QueryParam("timeframe") {
	case "7d":
		days = 7
	case "90d":
		days = 90
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -days)

	records, _, err := s.store.List(c.Request().Context(), feez.TransactionFilter{
		WalletAddress: strings.ToLower(address),
		Status:        feez.StatusConfirmed,
		Since:         start,
	})
	if err != nil {
		return s.writeError(c, err, "Failed to compute analytics")
	}

	return c.JSON(http.StatusOK, feez.BuildAnalytics(records, start, now))
}

func (s *Server) writeError(c echo.Context, err error, fallback string) error {
	if feez.IsClientError(err) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	s.log.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error":   fallback,
		"details": err.Error(),
	})
}

func atoiDefault(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
