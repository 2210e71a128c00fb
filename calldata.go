package feez

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Function selectors for the encoded actions.
const (
	selectorMintNFT  = "a1448194" // mint(address,string)
	selectorTransfer = "a9059cbb" // transfer(address,uint256)
	selectorSwap     = "38ed1739" // swapExactTokensForTokens-style entry
)

// Conservative call gas limits per action.
const (
	mintCallGasLimit     uint64 = 100000
	transferCallGasLimit uint64 = 65000
	swapCallGasLimit     uint64 = 200000
)

// Token decimal factors.
const (
	usdcDecimals = 6
	weiDecimals  = 18
)

// CallParams carries the action-specific arguments for call-data encoding.
type CallParams struct {
	Sender    string
	Recipient string
	Amount    string
	TokenURI  string
}

// EncodeCallData produces the 0x-prefixed ABI-encoded call payload and the
// call gas limit for an action. Pure: identical inputs yield identical
// output.
func EncodeCallData(kind ActionKind, params CallParams) (string, uint64, error) {
	switch kind {
	case ActionMintNFT:
		return encodeMintNFT(params)
	case ActionSendUSDC:
		return encodeUSDCTransfer(params)
	case ActionSwap:
		return encodeSwap(params)
	default:
		return "", 0, NewOpError(ErrCodeUnsupportedAction,
			fmt.Sprintf("unsupported action: %s", kind), nil)
	}
}

// encodeMintNFT encodes mint(address to, string tokenURI). The string
// argument is dynamic: a head word pointing at the tail, then the
// length-prefixed UTF-8 bytes padded to a 32-byte boundary.
func encodeMintNFT(params CallParams) (string, uint64, error) {
	to, err := addressWord(params.Recipient)
	if err != nil {
		return "", 0, err
	}
	if params.TokenURI == "" {
		return "", 0, NewOpError(ErrCodeInvalidParameters, "token URI is required for mint", nil)
	}

	// Offset of the string tail: two head words of 32 bytes each.
	offset := fmt.Sprintf("%064x", 0x40)
	length := fmt.Sprintf("%064x", len(params.TokenURI))
	data := hex.EncodeToString([]byte(params.TokenURI))
	if rem := len(data) % 64; rem != 0 {
		data += zeroWord[:64-rem]
	}

	return "0x" + selectorMintNFT + to + offset + length + data, mintCallGasLimit, nil
}

// encodeUSDCTransfer encodes transfer(address to, uint256 amount) with the
// amount scaled by the USDC decimal factor, truncated toward zero.
func encodeUSDCTransfer(params CallParams) (string, uint64, error) {
	if params.Recipient == "" || params.Amount == "" {
		return "", 0, NewOpError(ErrCodeInvalidParameters,
			"recipient and amount required for USDC transfer", nil)
	}
	to, err := addressWord(params.Recipient)
	if err != nil {
		return "", 0, err
	}
	amount, err := scaleAmount(params.Amount, usdcDecimals)
	if err != nil {
		return "", 0, err
	}

	return "0x" + selectorTransfer + to + amountWord(amount), transferCallGasLimit, nil
}

// encodeSwap encodes the swap entry with the amount scaled to wei and both
// party addresses.
func encodeSwap(params CallParams) (string, uint64, error) {
	if params.Recipient == "" || params.Amount == "" {
		return "", 0, NewOpError(ErrCodeInvalidParameters,
			"recipient and amount required for swap", nil)
	}
	from, err := addressWord(params.Sender)
	if err != nil {
		return "", 0, err
	}
	to, err := addressWord(params.Recipient)
	if err != nil {
		return "", 0, err
	}
	amount, err := scaleAmount(params.Amount, weiDecimals)
	if err != nil {
		return "", 0, err
	}

	return "0x" + selectorSwap + amountWord(amount) + from + to, swapCallGasLimit, nil
}

// addressWord validates a 20-byte hex address and renders it as a
// zero-padded lowercase 32-byte word.
func addressWord(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", NewOpError(ErrCodeInvalidParameters,
			fmt.Sprintf("invalid address: %s", addr), nil)
	}
	return fmt.Sprintf("%064x", new(big.Int).SetBytes(common.HexToAddress(addr).Bytes())), nil
}

// amountWord renders an integer amount as a 32-byte word.
func amountWord(amount *big.Int) string {
	return fmt.Sprintf("%064x", amount)
}

// amountPattern admits plain non-negative decimals only. big.Rat.SetString
// on its own would also accept fraction ("3/2") and exponent ("1e5") forms.
var amountPattern = regexp.MustCompile(`^(\d+|\d*\.\d+)$`)

// parseAmount parses a non-negative decimal amount string.
func parseAmount(amount string) (*big.Rat, error) {
	if !amountPattern.MatchString(amount) {
		return nil, NewOpError(ErrCodeInvalidParameters,
			fmt.Sprintf("invalid amount: %s", amount), nil)
	}
	r, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, NewOpError(ErrCodeInvalidParameters,
			fmt.Sprintf("invalid amount: %s", amount), nil)
	}
	return r, nil
}

// scaleAmount parses a non-negative decimal string and scales it by
// 10^decimals, truncating toward zero.
func scaleAmount(amount string, decimals int) (*big.Int, error) {
	r, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(factor))
	return new(big.Int).Quo(scaled.Num(), scaled.Denom()), nil
}

const zeroWord = "0000000000000000000000000000000000000000000000000000000000000000"

// MintTokenURI generates a metadata URI for a freshly minted token. The URI
// is clock-derived, so mint_nft call-data varies across invocations while
// EncodeCallData itself stays pure.
func MintTokenURI() string {
	return fmt.Sprintf("https://api.feez.app/metadata/%d", time.Now().UnixMilli())
}
