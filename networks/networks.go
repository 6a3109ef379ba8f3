// Package networks maps network names to their chain metadata.
package networks

import (
	"fmt"
	"sort"

	"github.com/vitwit/gasfund/types"
)

var registry = map[types.Network]types.NetworkInfo{
	types.NetworkEthereum: {
		Network:        types.NetworkEthereum,
		ChainID:        1,
		Name:           "Ethereum Mainnet",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
		CoinGeckoID:    "ethereum",
		DefaultRPCURL:  "https://eth.llamarpc.com",
	},
	types.NetworkSepolia: {
		Network:        types.NetworkSepolia,
		ChainID:        11155111,
		Name:           "Sepolia",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
		CoinGeckoID:    "ethereum",
		DefaultRPCURL:  "https://rpc.sepolia.org",
	},
	types.NetworkPolygon: {
		Network:        types.NetworkPolygon,
		ChainID:        137,
		Name:           "Polygon",
		NativeSymbol:   "POL",
		NativeDecimals: 18,
		CoinGeckoID:    "polygon-ecosystem-token",
		DefaultRPCURL:  "https://polygon-rpc.com",
	},
	types.NetworkPolygonAmoy: {
		Network:        types.NetworkPolygonAmoy,
		ChainID:        80002,
		Name:           "Polygon Amoy",
		NativeSymbol:   "POL",
		NativeDecimals: 18,
		CoinGeckoID:    "polygon-ecosystem-token",
		DefaultRPCURL:  "https://rpc-amoy.polygon.technology",
	},
	types.NetworkBase: {
		Network:        types.NetworkBase,
		ChainID:        8453,
		Name:           "Base",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
		CoinGeckoID:    "ethereum",
		DefaultRPCURL:  "https://mainnet.base.org",
	},
	types.NetworkBaseSepolia: {
		Network:        types.NetworkBaseSepolia,
		ChainID:        84532,
		Name:           "Base Sepolia",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
		CoinGeckoID:    "ethereum",
		DefaultRPCURL:  "https://sepolia.base.org",
	},
}

// Lookup resolves a network name to its metadata. Unknown names return a
// GasFundError with code UNKNOWN_NETWORK.
func Lookup(name string) (*types.NetworkInfo, error) {
	info, ok := registry[types.Network(name)]
	if !ok {
		return nil, &types.GasFundError{
			Code:    types.ErrUnknownNetwork,
			Message: fmt.Sprintf("unknown network: %s (known: %v)", name, Names()),
		}
	}
	return &info, nil
}

// Names returns the sorted list of known network names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n.String())
	}
	sort.Strings(names)
	return names
}
