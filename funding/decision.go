package funding

import (
	"math/big"

	"github.com/vitwit/gasfund/types"
)

// RequiredCost computes gasPrice × gasAmount exactly, in the chain's
// smallest currency unit.
func RequiredCost(gasPrice *big.Int, gasAmount uint64) *big.Int {
	return new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasAmount))
}

// Decide resolves the funding decision for the given balances and request.
// receiverBalance may be nil in absolute mode (it is not consulted).
//
// The checks are ordered: insolvency wins over everything, then a clamped
// non-positive amount yields a no-op, otherwise a send. Amounts in the
// returned decision are never negative.
func Decide(funderBalance, gasPrice *big.Int, gasAmount uint64, mode types.FundingMode, receiverBalance *big.Int) types.Decision {
	required := RequiredCost(gasPrice, gasAmount)

	if funderBalance.Cmp(required) < 0 {
		return types.Decision{
			Kind:         types.DecisionInsufficient,
			RequiredCost: required,
			Shortfall:    new(big.Int).Sub(required, funderBalance),
		}
	}

	amount := new(big.Int).Set(required)
	if mode == types.ModeDifference && receiverBalance != nil {
		amount.Sub(amount, receiverBalance)
	}

	if amount.Sign() <= 0 {
		return types.Decision{
			Kind:         types.DecisionNoop,
			RequiredCost: required,
		}
	}

	return types.Decision{
		Kind:         types.DecisionSend,
		RequiredCost: required,
		AmountToSend: amount,
	}
}
