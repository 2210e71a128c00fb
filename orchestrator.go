package feez

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Orchestrator drives user operations from estimation through sponsorship
// and the pending→confirmed/failed lifecycle. It is the only writer of
// TransactionRecords.
type Orchestrator struct {
	builder       *Builder
	paymaster     PaymasterClient
	store         TransactionStore
	confirmations ConfirmationSource
	log           *zap.Logger
	watchTimeout  time.Duration

	watchers sync.WaitGroup
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the structured logger used by the confirmation watcher.
func WithLogger(log *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithWatchTimeout bounds how long a confirmation watcher may stay
// unresolved before the record is marked failed.
func WithWatchTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.watchTimeout = d
	}
}

// NewOrchestrator wires the orchestrator with its injected collaborators.
func NewOrchestrator(paymaster PaymasterClient, store TransactionStore, confirmations ConfirmationSource, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		builder:       NewBuilder(),
		paymaster:     paymaster,
		store:         store,
		confirmations: confirmations,
		log:           zap.NewNop(),
		watchTimeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Estimate builds the user operation for the request and quotes its gas
// fee through the paymaster. No state is persisted.
func (o *Orchestrator) Estimate(ctx context.Context, req ActionRequest) (*GasEstimate, ChainProfile, error) {
	profile := ResolveChain(req.ChainID)

	op, err := o.builder.Build(req, true)
	if err != nil {
		return nil, profile, err
	}

	estimate, err := o.paymaster.EstimateGas(ctx, req.ChainID, op)
	if err != nil {
		return nil, profile, err
	}
	return estimate, profile, nil
}

// Submit sponsors the operation, persists a pending TransactionRecord, and
// schedules the confirmation watcher. Returns synchronously once the
// paymaster accepts; the terminal transition is observed later via the
// store. A failure before persistence leaves no trace.
func (o *Orchestrator) Submit(ctx context.Context, req ActionRequest, estimate GasEstimate, sponsored bool) (*SubmitResult, error) {
	profile := ResolveChain(req.ChainID)

	op, err := o.builder.Build(req, true)
	if err != nil {
		return nil, err
	}

	result, err := o.paymaster.SponsorUserOperation(ctx, req.ChainID, op, sponsored)
	if err != nil {
		return nil, err
	}

	// A sponsored operation must never show a user-borne USDC cost, no
	// matter what the estimate reported.
	feeUSDC := 0.0
	if !sponsored {
		feeUSDC = parseFee(estimate.GasFeeUSDC)
	}

	rec := &TransactionRecord{
		ID:            uuid.NewString(),
		TxHash:        result.UserOpHash,
		Chain:         profile.Name,
		WalletAddress: strings.ToLower(req.Sender),
		Action:        req.Action,
		GasFeeUSDC:    feeUSDC,
		GasFeeNative:  parseFee(estimate.GasFeeNative),
		NativeToken:   profile.NativeToken,
		Sponsored:     sponsored,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := o.store.Create(ctx, rec); err != nil {
		return nil, NewOpError(ErrCodePersistenceFailure,
			fmt.Sprintf("failed to persist transaction: %v", err), nil)
	}

	o.watchers.Add(1)
	go o.watch(rec.ID, result.UserOpHash)

	feeOut := "0"
	if !sponsored {
		feeOut = result.GasFeeUSDC
	}
	return &SubmitResult{
		TransactionID:    rec.ID,
		TxHash:           result.UserOpHash,
		GasFeeUSDC:       feeOut,
		PaymasterAndData: result.PaymasterAndData,
		Sponsored:        sponsored,
	}, nil
}

// watch drives a single record to its terminal state. Failures here are
// terminal within the watcher: they are logged, never propagated, and a
// failed update leaves the record pending for a later reconciliation pass.
func (o *Orchestrator) watch(recordID, opHash string) {
	defer o.watchers.Done()

	ctx, cancel := context.WithTimeout(context.Background(), o.watchTimeout)
	defer cancel()

	status, err := o.confirmations.Await(ctx, opHash)
	if err != nil {
		// Unresolved within the watch window counts as failed rather
		// than pending forever.
		o.log.Warn("confirmation did not resolve in time",
			zap.String("transactionId", recordID),
			zap.String("opHash", opHash),
			zap.Error(err))
		status = StatusFailed
	}

	updateCtx, updateCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer updateCancel()

	if err := o.store.UpdateStatus(updateCtx, recordID, StatusPending, status); err != nil {
		o.log.Error("failed to update transaction status",
			zap.String("transactionId", recordID),
			zap.String("status", string(status)),
			zap.Error(err))
		return
	}

	o.log.Info("transaction settled",
		zap.String("transactionId", recordID),
		zap.String("opHash", opHash),
		zap.String("status", string(status)))
}

// Wait blocks until all in-flight confirmation watchers have finished.
// Intended for graceful shutdown and tests.
func (o *Orchestrator) Wait() {
	o.watchers.Wait()
}

func parseFee(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
