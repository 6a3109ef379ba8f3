// Package pricing resolves best-effort USD quotes for native coins. Quote
// lookups never fail the run: every error collapses into an unavailable
// quote and USD figures render as a placeholder.
package pricing

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
)

// USDPlaceholder is rendered wherever a USD figure is requested but no
// quote is available.
const USDPlaceholder = "$?"

// Quote is the result of a price lookup: a USD rate or "unavailable".
type Quote struct {
	Rate      decimal.Decimal
	Available bool
}

// Unavailable returns the zero quote.
func Unavailable() Quote {
	return Quote{}
}

// Service is the price-quote collaborator. Implementations must swallow
// all failures and report them as an unavailable quote.
type Service interface {
	NativeUSD(ctx context.Context, coinID string) Quote
}

// USD formats a smallest-unit amount as a USD string using the quote, or
// the placeholder when the quote is unavailable.
func USD(amount *big.Int, decimals int32, q Quote) string {
	if !q.Available || amount == nil {
		return USDPlaceholder
	}
	native := decimal.NewFromBigInt(amount, -decimals)
	return "$" + native.Mul(q.Rate).StringFixed(2)
}

// Native formats a smallest-unit amount in the coin's display unit.
func Native(amount *big.Int, decimals int32, symbol string) string {
	if amount == nil {
		return "0 " + symbol
	}
	return decimal.NewFromBigInt(amount, -decimals).String() + " " + symbol
}
