package feez

import (
	"context"
	"time"
)

// PaymasterClient is the boundary to the external gas-sponsorship service.
// Implementations are chosen at construction time and injected into the
// orchestrator; components never inspect the environment to pick one.
type PaymasterClient interface {
	// EstimateGas quotes the fee for a user operation in both native
	// currency and USDC. Transport failures surface as
	// paymaster_unavailable, structured refusals as paymaster_rejected.
	EstimateGas(ctx context.Context, chainID int64, op UserOperation) (*GasEstimate, error)

	// SponsorUserOperation submits the operation for sponsorship or
	// USDC-charged execution. Same failure taxonomy as EstimateGas.
	SponsorUserOperation(ctx context.Context, chainID int64, op UserOperation, sponsor bool) (*SponsorResult, error)
}

// TransactionFilter narrows List results. Zero values mean "no filter";
// Limit <= 0 means no limit.
type TransactionFilter struct {
	WalletAddress string
	Chain         string
	Status        TxStatus
	Since         time.Time
	Limit         int
	Offset        int
}

// TransactionStore persists transaction records. The orchestrator is the
// only writer; other components read via Get/List.
type TransactionStore interface {
	// Create inserts a new record. The record ID must be unique.
	Create(ctx context.Context, rec *TransactionRecord) error

	// Get returns the record with the given ID, or nil when absent.
	Get(ctx context.Context, id string) (*TransactionRecord, error)

	// List returns matching records ordered newest-first along with the
	// total match count before pagination.
	List(ctx context.Context, f TransactionFilter) ([]TransactionRecord, int64, error)

	// UpdateStatus transitions a record from one status to another. The
	// update applies only when the current status equals from, so
	// concurrent writers cannot clobber a terminal state.
	UpdateStatus(ctx context.Context, id string, from, to TxStatus) error
}

// ConfirmationSource resolves the eventual on-chain outcome of a submitted
// operation. Await blocks until a terminal status is known or the context
// ends.
type ConfirmationSource interface {
	Await(ctx context.Context, opHash string) (TxStatus, error)
}
