// Package httpapi exposes the orchestration engine over a gin REST API:
// POST /api/estimate, POST /api/execute, GET /api/transactions and
// GET /api/analytics.
package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	feez "github.com/feez-app/feez-go"
)

// EstimateRequest is the POST /api/estimate body.
type EstimateRequest struct {
	ChainID   int64  `json:"chainId"`
	Action    string `json:"action"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

// EstimateResponse is the POST /api/estimate success payload.
type EstimateResponse struct {
	GasFeeNative     string `json:"gasFeeNative"`
	GasFeeUSDC       string `json:"gasFeeUSDC"`
	NativeToken      string `json:"nativeToken"`
	PaymasterAndData string `json:"paymasterAndData"`
}

// EstimateBody is the caller-echoed estimate inside an execute request.
type EstimateBody struct {
	GasFeeNative string `json:"gasFeeNative"`
	GasFeeUSDC   string `json:"gasFeeUSDC"`
	NativeToken  string `json:"nativeToken"`
}

// ExecuteRequest is the POST /api/execute body.
type ExecuteRequest struct {
	ChainID   int64        `json:"chainId"`
	Action    string       `json:"action"`
	Sender    string       `json:"sender"`
	Recipient string       `json:"recipient,omitempty"`
	Amount    string       `json:"amount,omitempty"`
	Sponsored bool         `json:"sponsored"`
	Estimate  EstimateBody `json:"estimate"`
}

// ExecuteResponse is the POST /api/execute success payload.
type ExecuteResponse struct {
	TxHash           string `json:"txHash"`
	GasFeeUSDC       string `json:"gasFeeUSDC"`
	PaymasterAndData string `json:"paymasterAndData"`
	TransactionID    string `json:"transactionId"`
	Sponsored        bool   `json:"sponsored"`
}

// TransactionView decorates a stored record with its chain ID and explorer
// link for clients.
type TransactionView struct {
	feez.TransactionRecord
	ChainID     int64  `json:"chainId"`
	ExplorerURL string `json:"explorerUrl"`
}

// Pagination describes a page of listed transactions.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// TransactionsResponse is the GET /api/transactions payload.
type TransactionsResponse struct {
	Transactions []TransactionView `json:"transactions"`
	Pagination   Pagination        `json:"pagination"`
}

const maxListLimit = 100

// Server holds the handlers for the REST boundary.
type Server struct {
	orch  *feez.Orchestrator
	store feez.TransactionStore
	log   *zap.Logger
}

// NewServer creates the REST boundary over an orchestrator and a
// read-only view of its store.
func NewServer(orch *feez.Orchestrator, store feez.TransactionStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{orch: orch, store: store, log: log}
}

// Router builds a gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches the API routes to an existing engine.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/estimate", s.handleEstimate)
	api.POST("/execute", s.handleExecute)
	api.GET("/transactions", s.handleTransactions)
	api.GET("/analytics", s.handleAnalytics)
}

func (s *Server) handleEstimate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if err := ValidateEstimateBody(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req EstimateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	estimate, profile, err := s.orch.Estimate(c.Request.Context(), feez.ActionRequest{
		ChainID:   req.ChainID,
		Action:    feez.ActionKind(req.Action),
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Amount:    req.Amount,
	})
	if err != nil {
		s.writeError(c, err, "Failed to estimate gas fees")
		return
	}

	c.JSON(http.StatusOK, EstimateResponse{
		GasFeeNative:     estimate.GasFeeNative,
		GasFeeUSDC:       estimate.GasFeeUSDC,
		NativeToken:      profile.NativeToken,
		PaymasterAndData: estimate.PaymasterAndData,
	})
}

func (s *Server) handleExecute(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if err := ValidateExecuteBody(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req ExecuteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	result, err := s.orch.Submit(c.Request.Context(), feez.ActionRequest{
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
		s.writeError(c, err, "Failed to execute transaction")
		return
	}

	c.JSON(http.StatusOK, ExecuteResponse{
		TxHash:           result.TxHash,
		GasFeeUSDC:       result.GasFeeUSDC,
		PaymasterAndData: result.PaymasterAndData,
		TransactionID:    result.TransactionID,
		Sponsored:        result.Sponsored,
	})
}

func (s *Server) handleTransactions(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address parameter is required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > maxListLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit or offset. Limit must be <= 100"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit or offset. Limit must be <= 100"})
		return
	}

	filter := feez.TransactionFilter{
		WalletAddress: strings.ToLower(address),
		Limit:         limit,
		Offset:        offset,
	}
	if raw := c.Query("chainId"); raw != "" {
		if chainID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			// Only filter by chains the registry actually knows.
			if profile := feez.ResolveChain(chainID); feez.ChainIDByName(profile.Name) != 0 {
				filter.Chain = profile.Name
			}
		}
	}
	if status := c.Query("status"); status != "" {
		filter.Status = feez.TxStatus(status)
	}

	records, total, err := s.store.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err, "Failed to fetch transactions")
		return
	}

	views := make([]TransactionView, 0, len(records))
	for _, rec := range records {
		chainID := feez.ChainIDByName(rec.Chain)
		if chainID == 0 {
			chainID = feez.ChainIDEthereum
		}
		views = append(views, TransactionView{
			TransactionRecord: rec,
			ChainID:           chainID,
			ExplorerURL:       feez.ExplorerTxURL(chainID, rec.TxHash),
		})
	}

	c.JSON(http.StatusOK, TransactionsResponse{
		Transactions: views,
		Pagination: Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+limit) < total,
		},
	})
}

func (s *Server) handleAnalytics(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
		return
	}

	days := 30
	switch c.DefaultQuery("timeframe", "30d") {
	case "7d":
		days = 7
	case "90d":
		days = 90
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -days)

	records, _, err := s.store.List(c.Request.Context(), feez.TransactionFilter{
		WalletAddress: strings.ToLower(address),
		Status:        feez.StatusConfirmed,
		Since:         start,
	})
	if err != nil {
		s.writeError(c, err, "Failed to compute analytics")
		return
	}

	c.JSON(http.StatusOK, feez.BuildAnalytics(records, start, now))
}

// writeError maps taxonomy codes to status classes: caller mistakes are
// 400s with a reason, downstream failures are 500s carrying the detail.
func (s *Server) writeError(c *gin.Context, err error, fallback string) {
	if feez.IsClientError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   fallback,
		"details": err.Error(),
	})
}
