package clients

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gftypes "github.com/vitwit/gasfund/types"
)

// NodeClient is the node collaborator consumed by the funding engine.
type NodeClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	Transfer(ctx context.Context, to common.Address, amount, gasPrice *big.Int) (*gftypes.Outcome, error)
	FunderAddress() common.Address
	Close()
}
