package feez

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ChainProfile is the static metadata for a chain known to the system.
type ChainProfile struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	ShortName          string         `json:"shortName"`
	NativeToken        string         `json:"nativeToken"`
	Color              string         `json:"color"`
	USDCAddress        common.Address `json:"usdcAddress"`
	PaymasterSupported bool           `json:"paymasterSupported"`
	ExplorerURL        string         `json:"explorerUrl"`
	Testnet            bool           `json:"testnet"`
}

// Chain IDs for the supported networks.
const (
	ChainIDEthereum    int64 = 1
	ChainIDOptimism    int64 = 10
	ChainIDPolygon     int64 = 137
	ChainIDUnichain    int64 = 1301
	ChainIDBase        int64 = 8453
	ChainIDAvalanche   int64 = 43114
	ChainIDArbitrum    int64 = 42161
	ChainIDBaseSepolia int64 = 84532
)

// chainProfiles is the registry of known chains. Initialized once at
// startup, read-only afterwards.
var chainProfiles = map[int64]ChainProfile{
	ChainIDBaseSepolia: {
		ID:                 ChainIDBaseSepolia,
		Name:               "Base Sepolia",
		ShortName:          "Base",
		NativeToken:        "ETH",
		Color:              "#0052FF",
		USDCAddress:        common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
		PaymasterSupported: true,
		ExplorerURL:        "https://sepolia.basescan.org",
		Testnet:            true,
	},
	ChainIDBase: {
		ID:                 ChainIDBase,
		Name:               "Base",
		ShortName:          "Base",
		NativeToken:        "ETH",
		Color:              "#0052FF",
		USDCAddress:        common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		PaymasterSupported: true,
		ExplorerURL:        "https://basescan.org",
	},
	ChainIDEthereum: {
		ID:                 ChainIDEthereum,
		Name:               "Ethereum",
		ShortName:          "Ethereum",
		NativeToken:        "ETH",
		Color:              "#627EEA",
		USDCAddress:        common.HexToAddress("0xA0b86a33E6411c0e8dd57302A0e3C0a7C0e86d37"),
		PaymasterSupported: true,
		ExplorerURL:        "https://etherscan.io",
	},
	ChainIDPolygon: {
		ID:                 ChainIDPolygon,
		Name:               "Polygon",
		ShortName:          "Polygon",
		NativeToken:        "MATIC",
		Color:              "#8247E5",
		USDCAddress:        common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		PaymasterSupported: true,
		ExplorerURL:        "https://polygonscan.com",
	},
	ChainIDArbitrum: {
		ID:                 ChainIDArbitrum,
		Name:               "Arbitrum One",
		ShortName:          "Arbitrum",
		NativeToken:        "ETH",
		Color:              "#28A0F0",
		USDCAddress:        common.HexToAddress("0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8"),
		PaymasterSupported: true,
		ExplorerURL:        "https://arbiscan.io",
	},
	ChainIDOptimism: {
		ID:                 ChainIDOptimism,
		Name:               "Optimism",
		ShortName:          "Optimism",
		NativeToken:        "ETH",
		Color:              "#FF0420",
		USDCAddress:        common.HexToAddress("0x7F5c764cBc14f9669B88837ca1490cCa17c31607"),
		PaymasterSupported: true,
		ExplorerURL:        "https://optimistic.etherscan.io",
	},
	ChainIDAvalanche: {
		ID:                 ChainIDAvalanche,
		Name:               "Avalanche",
		ShortName:          "Avalanche",
		NativeToken:        "AVAX",
		Color:              "#E84142",
		USDCAddress:        common.HexToAddress("0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E"),
		PaymasterSupported: true,
		ExplorerURL:        "https://snowtrace.io",
	},
	ChainIDUnichain: {
		ID:                 ChainIDUnichain,
		Name:               "Unichain Sepolia",
		ShortName:          "Unichain",
		NativeToken:        "ETH",
		Color:              "#FF007A",
		USDCAddress:        common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
		PaymasterSupported: false,
		ExplorerURL:        "https://sepolia.uniscan.xyz",
		Testnet:            true,
	},
}

// ResolveChain returns the profile for a chain ID. Unknown chains resolve
// to a generic placeholder so lookups never fail.
func ResolveChain(chainID int64) ChainProfile {
	if profile, ok := chainProfiles[chainID]; ok {
		return profile
	}
	name := fmt.Sprintf("Chain %d", chainID)
	return ChainProfile{
		ID:          chainID,
		Name:        name,
		ShortName:   name,
		NativeToken: "ETH",
		Color:       "#666666",
		ExplorerURL: "https://etherscan.io",
	}
}

// SupportsPaymaster reports whether the chain is in the paymaster-supported
// set. Always agrees with ResolveChain(chainID).PaymasterSupported.
func SupportsPaymaster(chainID int64) bool {
	return chainProfiles[chainID].PaymasterSupported
}

// KnownChainIDs returns the IDs of all registered chains.
func KnownChainIDs() []int64 {
	ids := make([]int64, 0, len(chainProfiles))
	for id := range chainProfiles {
		ids = append(ids, id)
	}
	return ids
}

// ChainIDByName maps a stored chain name back to its ID. Returns 0 when no
// registered chain carries the name.
func ChainIDByName(name string) int64 {
	for id, profile := range chainProfiles {
		if profile.Name == name {
			return id
		}
	}
	return 0
}

// ChainColorByName returns the display color for a chain name, with a
// neutral fallback for unknown names.
func ChainColorByName(name string) string {
	for _, profile := range chainProfiles {
		if profile.Name == name || profile.ShortName == name {
			return profile.Color
		}
	}
	return "#6B7280"
}

// ExplorerTxURL returns the block-explorer link for a transaction hash.
func ExplorerTxURL(chainID int64, txHash string) string {
	return fmt.Sprintf("%s/tx/%s", ResolveChain(chainID).ExplorerURL, txHash)
}
