// Package types defines the shared domain types for gasfund: networks,
// funding requests, decisions and transaction outcomes.
package types

import (
	"math/big"
	"time"
)

// Network represents a supported blockchain network
type Network string

const (
	NetworkEthereum    Network = "ethereum"
	NetworkSepolia     Network = "sepolia" // testnet
	NetworkPolygon     Network = "polygon"
	NetworkPolygonAmoy Network = "polygon-amoy" // testnet
	NetworkBase        Network = "base"
	NetworkBaseSepolia Network = "base-sepolia" // testnet
)

func (n Network) String() string {
	return string(n)
}

func (n Network) IsTestnet() bool {
	return n == NetworkSepolia || n == NetworkPolygonAmoy || n == NetworkBaseSepolia
}

// NetworkInfo holds the chain metadata needed to price and submit a
// funding transfer on a network.
type NetworkInfo struct {
	Network        Network `json:"network"`
	ChainID        uint64  `json:"chainId"`
	Name           string  `json:"name"`
	NativeSymbol   string  `json:"nativeSymbol"`
	NativeDecimals int32   `json:"nativeDecimals"`

	// CoinGeckoID identifies the native coin on the price-quote service.
	// Empty when the coin is not listed; USD display is skipped then.
	CoinGeckoID string `json:"coingeckoId,omitempty"`

	DefaultRPCURL string `json:"defaultRpcUrl,omitempty"`
}

// FundingMode selects how the amount to send is resolved.
type FundingMode string

const (
	// ModeAbsolute sends the full required cost unconditionally.
	ModeAbsolute FundingMode = "absolute"

	// ModeDifference tops up only the shortfall between the required cost
	// and the receiver's current balance.
	ModeDifference FundingMode = "difference"
)

// FundingRequest describes one funding invocation.
type FundingRequest struct {
	Network   Network     `json:"network"`
	GasAmount uint64      `json:"gasAmount"`
	Receiver  string      `json:"receiver"`
	Mode      FundingMode `json:"mode"`
}

// DecisionKind is the terminal outcome class of a funding decision.
type DecisionKind string

const (
	// DecisionInsufficient means the funder cannot cover the required cost.
	DecisionInsufficient DecisionKind = "insufficient_balance"

	// DecisionNoop means the receiver is already sufficiently funded.
	DecisionNoop DecisionKind = "already_funded"

	// DecisionSend means a transfer of AmountToSend should be submitted.
	DecisionSend DecisionKind = "send"
)

// Decision is the result of the funding decision logic. Exactly one of the
// three kinds holds for any input combination. All amounts are in the
// chain's smallest currency unit and are never negative.
type Decision struct {
	Kind         DecisionKind `json:"kind"`
	RequiredCost *big.Int     `json:"requiredCost"`

	// Shortfall is set only for DecisionInsufficient.
	Shortfall *big.Int `json:"shortfall,omitempty"`

	// AmountToSend is set only for DecisionSend.
	AmountToSend *big.Int `json:"amountToSend,omitempty"`
}

// Outcome describes a submitted and confirmed funding transfer.
type Outcome struct {
	TxHash      string    `json:"txHash"`
	BlockNumber uint64    `json:"blockNumber"`
	GasUsed     uint64    `json:"gasUsed"`
	Success     bool      `json:"success"`
	Timestamp   time.Time `json:"timestamp"`
}

// GasFundError is the error type surfaced by gasfund packages.
type GasFundError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GasFundError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrUnknownNetwork = "UNKNOWN_NETWORK"
	ErrConfigError    = "CONFIG_ERROR"
	ErrNodeError      = "NODE_ERROR"
	ErrSubmitError    = "SUBMIT_ERROR"
)
