package funding

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/gasfund/pricing"
	"github.com/vitwit/gasfund/types"
)

const testReceiver = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

var errRPC = errors.New("connection refused")

// mockNode is a scriptable NodeClient. Balances are keyed by address; a nil
// map entry means the query fails.
type mockNode struct {
	chainID    *big.Int
	chainIDErr error

	gasPrice    *big.Int
	gasPriceErr error

	balances   map[common.Address]*big.Int
	balanceErr map[common.Address]error

	funder common.Address

	transferErr error
	transfers   []transferCall
}

type transferCall struct {
	to       common.Address
	amount   *big.Int
	gasPrice *big.Int
}

func (m *mockNode) ChainID(context.Context) (*big.Int, error) {
	return m.chainID, m.chainIDErr
}

func (m *mockNode) GasPrice(context.Context) (*big.Int, error) {
	return m.gasPrice, m.gasPriceErr
}

func (m *mockNode) BalanceAt(_ context.Context, account common.Address) (*big.Int, error) {
	if err := m.balanceErr[account]; err != nil {
		return nil, err
	}
	bal, ok := m.balances[account]
	if !ok {
		return big.NewInt(0), nil
	}
	return bal, nil
}

func (m *mockNode) Transfer(_ context.Context, to common.Address, amount, gasPrice *big.Int) (*types.Outcome, error) {
	m.transfers = append(m.transfers, transferCall{to, amount, gasPrice})
	if m.transferErr != nil {
		return nil, m.transferErr
	}
	return &types.Outcome{
		TxHash:      "0xabc",
		BlockNumber: 42,
		GasUsed:     21000,
		Success:     true,
	}, nil
}

func (m *mockNode) FunderAddress() common.Address { return m.funder }
func (m *mockNode) Close()                        {}

// fixedPricer returns the same quote for every lookup.
type fixedPricer struct {
	quote pricing.Quote
}

func (f fixedPricer) NativeUSD(context.Context, string) pricing.Quote { return f.quote }

func testNetwork() *types.NetworkInfo {
	return &types.NetworkInfo{
		Network:        types.NetworkSepolia,
		ChainID:        11155111,
		Name:           "Sepolia",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
		CoinGeckoID:    "ethereum",
	}
}

func healthyNode(funderBalance *big.Int) *mockNode {
	funder := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	return &mockNode{
		chainID:  big.NewInt(11155111),
		gasPrice: gwei20,
		funder:   funder,
		balances: map[common.Address]*big.Int{
			funder: funderBalance,
		},
		balanceErr: map[common.Address]error{},
	}
}

func newTestEngine(node *mockNode, opts ...Option) *Engine {
	base := []Option{
		WithGraceDelay(0),
		WithPricer(fixedPricer{pricing.Quote{Rate: decimal.NewFromInt(2000), Available: true}}),
	}
	return New(testNetwork(), node, append(base, opts...)...)
}

func absoluteRequest() *types.FundingRequest {
	return &types.FundingRequest{
		Network:   types.NetworkSepolia,
		GasAmount: 50_000_000,
		Receiver:  testReceiver,
		Mode:      types.ModeAbsolute,
	}
}

func TestEngineRun_AbsoluteSend(t *testing.T) {
	node := healthyNode(twoCoins)
	engine := newTestEngine(node)

	decision, outcome, err := engine.Run(context.Background(), absoluteRequest())
	require.NoError(t, err)

	require.Equal(t, types.DecisionSend, decision.Kind)
	require.NotNil(t, outcome)
	assert.Equal(t, "0xabc", outcome.TxHash)
	assert.True(t, outcome.Success)

	require.Len(t, node.transfers, 1)
	sent := node.transfers[0]
	assert.Equal(t, common.HexToAddress(testReceiver), sent.to)
	assert.Zero(t, oneCoin.Cmp(sent.amount))
	assert.Zero(t, gwei20.Cmp(sent.gasPrice), "transfer must use the priced gas price")
}

func TestEngineRun_InsufficientBalance(t *testing.T) {
	node := healthyNode(halfCoin)
	engine := newTestEngine(node)

	decision, outcome, err := engine.Run(context.Background(), absoluteRequest())
	require.NoError(t, err, "insufficiency is a decision, not an error")

	require.Equal(t, types.DecisionInsufficient, decision.Kind)
	assert.Zero(t, halfCoin.Cmp(decision.Shortfall))
	assert.Nil(t, outcome)
	assert.Empty(t, node.transfers, "no transfer on the insufficient path")
}

func TestEngineRun_InsufficientSkipsReceiverLookup(t *testing.T) {
	node := healthyNode(halfCoin)
	// A failing receiver lookup must not matter: solvency is checked first.
	node.balanceErr[common.HexToAddress(testReceiver)] = errRPC
	engine := newTestEngine(node)

	req := absoluteRequest()
	req.Mode = types.ModeDifference

	decision, _, err := engine.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionInsufficient, decision.Kind)
}

func TestEngineRun_DifferenceNoop(t *testing.T) {
	node := healthyNode(twoCoins)
	node.balances[common.HexToAddress(testReceiver)] = oneCoin
	engine := newTestEngine(node)

	req := absoluteRequest()
	req.Mode = types.ModeDifference

	decision, outcome, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.DecisionNoop, decision.Kind)
	assert.Nil(t, outcome)
	assert.Empty(t, node.transfers)
}

func TestEngineRun_DifferenceTopUp(t *testing.T) {
	node := healthyNode(twoCoins)
	node.balances[common.HexToAddress(testReceiver)] = pointThree
	engine := newTestEngine(node)

	req := absoluteRequest()
	req.Mode = types.ModeDifference

	decision, outcome, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, types.DecisionSend, decision.Kind)
	require.NotNil(t, outcome)
	require.Len(t, node.transfers, 1)
	assert.Zero(t, mustBig("700000000000000000").Cmp(node.transfers[0].amount))
}

func TestEngineRun_DryRun(t *testing.T) {
	node := healthyNode(twoCoins)
	engine := newTestEngine(node, WithDryRun(true))

	decision, outcome, err := engine.Run(context.Background(), absoluteRequest())
	require.NoError(t, err)

	assert.Equal(t, types.DecisionSend, decision.Kind, "dry run still resolves the decision")
	assert.Nil(t, outcome)
	assert.Empty(t, node.transfers, "dry run must never submit")
}

func TestEngineRun_PriceUnavailableDoesNotAbort(t *testing.T) {
	node := healthyNode(twoCoins)
	engine := newTestEngine(node, WithPricer(fixedPricer{pricing.Unavailable()}))

	decision, outcome, err := engine.Run(context.Background(), absoluteRequest())
	require.NoError(t, err)
	assert.Equal(t, types.DecisionSend, decision.Kind)
	require.NotNil(t, outcome)
	require.Len(t, node.transfers, 1)
}

func TestEngineRun_FatalNodeFailures(t *testing.T) {
	funder := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	tests := []struct {
		name  string
		setup func(*mockNode)
		mode  types.FundingMode
	}{
		{"chain id failure", func(m *mockNode) { m.chainIDErr = errRPC }, types.ModeAbsolute},
		{"funder balance failure", func(m *mockNode) { m.balanceErr[funder] = errRPC }, types.ModeAbsolute},
		{"gas price failure", func(m *mockNode) { m.gasPriceErr = errRPC }, types.ModeAbsolute},
		{"receiver balance failure", func(m *mockNode) {
			m.balanceErr[common.HexToAddress(testReceiver)] = errRPC
		}, types.ModeDifference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := healthyNode(twoCoins)
			tt.setup(node)
			engine := newTestEngine(node)

			req := absoluteRequest()
			req.Mode = tt.mode

			_, outcome, err := engine.Run(context.Background(), req)
			require.Error(t, err)

			var gfe *types.GasFundError
			require.ErrorAs(t, err, &gfe)
			assert.Equal(t, types.ErrNodeError, gfe.Code)
			assert.Nil(t, outcome)
			assert.Empty(t, node.transfers, "fatal failures must not submit")
		})
	}
}

func TestEngineRun_SubmitFailureSurfaces(t *testing.T) {
	node := healthyNode(twoCoins)
	node.transferErr = errors.New("transaction rejected")
	engine := newTestEngine(node)

	decision, outcome, err := engine.Run(context.Background(), absoluteRequest())
	require.Error(t, err)

	var gfe *types.GasFundError
	require.ErrorAs(t, err, &gfe)
	assert.Equal(t, types.ErrSubmitError, gfe.Code)
	assert.Equal(t, types.DecisionSend, decision.Kind)
	assert.Nil(t, outcome)
	assert.Len(t, node.transfers, 1, "exactly one attempt, no retry")
}

func TestEngineRun_InvalidReceiver(t *testing.T) {
	node := healthyNode(twoCoins)
	engine := newTestEngine(node)

	req := absoluteRequest()
	req.Receiver = "not-an-address"

	_, _, err := engine.Run(context.Background(), req)
	require.Error(t, err)

	var gfe *types.GasFundError
	require.ErrorAs(t, err, &gfe)
	assert.Equal(t, types.ErrConfigError, gfe.Code)
}

func TestEngineRun_GraceDelayCancellation(t *testing.T) {
	node := healthyNode(twoCoins)
	engine := newTestEngine(node,
		WithGraceDelay(time.Hour),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			assert.Equal(t, time.Hour, d)
			return context.Canceled
		}),
	)

	decision, outcome, err := engine.Run(context.Background(), absoluteRequest())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, types.DecisionSend, decision.Kind)
	assert.Nil(t, outcome)
	assert.Empty(t, node.transfers, "cancellation during the grace delay must not submit")
}
