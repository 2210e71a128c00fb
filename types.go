package feez

import (
	"time"
)

// ActionKind identifies the on-chain action a user operation performs.
type ActionKind string

const (
	ActionMintNFT  ActionKind = "mint_nft"
	ActionSendUSDC ActionKind = "send_usdc"
	ActionSwap     ActionKind = "swap"
)

// Valid reports whether the action kind is one of the supported actions.
func (a ActionKind) Valid() bool {
	switch a {
	case ActionMintNFT, ActionSendUSDC, ActionSwap:
		return true
	}
	return false
}

// RequiresTransferParams reports whether the action needs an explicit
// recipient and amount.
func (a ActionKind) RequiresTransferParams() bool {
	return a == ActionSendUSDC || a == ActionSwap
}

// ActionRequest is the caller's description of an intended on-chain action.
// Recipient and Amount are required for send_usdc and swap; mint_nft mints
// to the sender when no recipient is given.
type ActionRequest struct {
	ChainID   int64      `json:"chainId"`
	Action    ActionKind `json:"action"`
	Sender    string     `json:"sender"`
	Recipient string     `json:"recipient,omitempty"`
	Amount    string     `json:"amount,omitempty"`
}

// UserOperation is the ERC-4337 envelope submitted to the paymaster.
// All numeric fields are decimal or hex strings as required by the wire
// format; CallData is a 0x-prefixed hex payload.
type UserOperation struct {
	Sender               string `json:"sender"`
	Nonce                string `json:"nonce"`
	InitCode             string `json:"initCode"`
	CallData             string `json:"callData"`
	CallGasLimit         string `json:"callGasLimit"`
	VerificationGasLimit string `json:"verificationGasLimit"`
	PreVerificationGas   string `json:"preVerificationGas"`
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
	PaymasterAndData     string `json:"paymasterAndData,omitempty"`
	Signature            string `json:"signature"`
}

// GasEstimate is the paymaster's fee quote for a user operation.
type GasEstimate struct {
	GasFeeNative     string `json:"gasFeeNative"`
	GasFeeUSDC       string `json:"gasFeeUSDC"`
	PaymasterAndData string `json:"paymasterAndData"`
}

// SponsorResult is the paymaster's response to a sponsorship request.
type SponsorResult struct {
	UserOpHash       string `json:"userOpHash"`
	PaymasterAndData string `json:"paymasterAndData"`
	GasFeeUSDC       string `json:"gasFeeUSDC"`
}

// TxStatus is the lifecycle state of a transaction record.
type TxStatus string

const (
	StatusPending   TxStatus = "pending"
	StatusConfirmed TxStatus = "confirmed"
	StatusFailed    TxStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s TxStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// TransactionRecord is the persisted lifecycle entity for a submitted
// operation. It is created in the pending state once sponsorship is
// accepted and transitions exactly once to confirmed or failed.
type TransactionRecord struct {
	ID            string     `json:"id"`
	TxHash        string     `json:"txHash"`
	Chain         string     `json:"chain"`
	WalletAddress string     `json:"walletAddress"`
	Action        ActionKind `json:"action"`
	GasFeeUSDC    float64    `json:"gasFeeUSDC"`
	GasFeeNative  float64    `json:"gasFeeNative"`
	NativeToken   string     `json:"nativeToken"`
	Sponsored     bool       `json:"sponsored"`
	Status        TxStatus   `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	ConfirmedAt   *time.Time `json:"confirmedAt,omitempty"`
}

// SubmitResult is returned synchronously from Orchestrator.Submit; the
// terminal status of the record is observed later via the store.
type SubmitResult struct {
	TransactionID    string `json:"transactionId"`
	TxHash           string `json:"txHash"`
	GasFeeUSDC       string `json:"gasFeeUSDC"`
	PaymasterAndData string `json:"paymasterAndData"`
	Sponsored        bool   `json:"sponsored"`
}
