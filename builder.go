package feez

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Placeholder fee-market policy values. These stand in for a live fee
// oracle; the paymaster re-quotes fees during estimation.
const (
	defaultVerificationGasLimit = "100000"
	defaultPreVerificationGas   = "21000"
	defaultMaxFeePerGas         = "20000000000" // 20 gwei
	defaultMaxPriorityFeePerGas = "1000000000"  // 1 gwei
)

// Builder assembles complete user operations from action requests.
type Builder struct {
	nonces *nonceSource
}

// NewBuilder creates a user operation builder with an in-process nonce
// source.
func NewBuilder() *Builder {
	return &Builder{nonces: newNonceSource()}
}

// Build validates the request, encodes its call-data, and fills the
// remaining envelope fields. When needsPaymaster is true the target chain
// must be in the paymaster-supported set.
func (b *Builder) Build(req ActionRequest, needsPaymaster bool) (UserOperation, error) {
	if !req.Action.Valid() {
		return UserOperation{}, NewOpError(ErrCodeUnsupportedAction,
			fmt.Sprintf("unsupported action: %s", req.Action), nil)
	}
	if !common.IsHexAddress(req.Sender) {
		return UserOperation{}, NewOpError(ErrCodeInvalidParameters,
			fmt.Sprintf("invalid sender address: %s", req.Sender), nil)
	}
	if needsPaymaster && !SupportsPaymaster(req.ChainID) {
		return UserOperation{}, NewOpError(ErrCodeUnsupportedChain,
			fmt.Sprintf("chain %d is not supported by the paymaster", req.ChainID), nil)
	}

	params := CallParams{
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Amount:    req.Amount,
	}
	switch req.Action {
	case ActionMintNFT:
		if params.Recipient == "" {
			params.Recipient = req.Sender
		}
		params.TokenURI = MintTokenURI()
	case ActionSendUSDC, ActionSwap:
		if req.Recipient == "" || req.Amount == "" {
			return UserOperation{}, NewOpError(ErrCodeInvalidParameters,
				fmt.Sprintf("recipient and amount required for %s", req.Action), nil)
		}
		// Positivity is checked on the parsed value, not a scaled
		// integer: a tiny swap amount is still positive even when it
		// would truncate to zero at USDC decimals.
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return UserOperation{}, err
		}
		if amount.Sign() == 0 {
			return UserOperation{}, NewOpError(ErrCodeInvalidParameters,
				fmt.Sprintf("amount must be positive: %s", req.Amount), nil)
		}
	}

	callData, callGasLimit, err := EncodeCallData(req.Action, params)
	if err != nil {
		return UserOperation{}, err
	}

	return UserOperation{
		Sender:               req.Sender,
		Nonce:                hexutil.EncodeUint64(b.nonces.Next(req.Sender)),
		InitCode:             "0x",
		CallData:             callData,
		CallGasLimit:         strconv.FormatUint(callGasLimit, 10),
		VerificationGasLimit: defaultVerificationGasLimit,
		PreVerificationGas:   defaultPreVerificationGas,
		MaxFeePerGas:         defaultMaxFeePerGas,
		MaxPriorityFeePerGas: defaultMaxPriorityFeePerGas,
		Signature:            "0x",
	}, nil
}

// nonceSource hands out strictly increasing nonces per sender. Counters
// are seeded from the clock once, so values stay unique across process
// restarts at realistic call rates.
type nonceSource struct {
	mu   sync.Mutex
	next map[string]uint64
}

func newNonceSource() *nonceSource {
	return &nonceSource{next: make(map[string]uint64)}
}

// Next returns the next nonce for the sender.
func (n *nonceSource) Next(sender string) uint64 {
	key := strings.ToLower(sender)

	n.mu.Lock()
	defer n.mu.Unlock()

	v, ok := n.next[key]
	if !ok {
		v = uint64(time.Now().Unix())
	}
	n.next[key] = v + 1
	return v
}
