// Package funding implements the gas funding decision engine: it prices a
// requested amount of gas, checks the funder's solvency and submits at most
// one value transfer per run.
package funding

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vitwit/gasfund/clients"
	"github.com/vitwit/gasfund/logger"
	"github.com/vitwit/gasfund/metrics"
	"github.com/vitwit/gasfund/pricing"
	"github.com/vitwit/gasfund/types"
)

// Engine orchestrates one funding decision against its collaborators.
type Engine struct {
	network *types.NetworkInfo
	client  clients.NodeClient

	pricer  pricing.Service
	log     logger.Logger
	metrics metrics.Recorder

	graceDelay time.Duration
	dryRun     bool
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates an engine for one network. Collaborators beyond the node
// client are injected through options; defaults are a noop logger, noop
// metrics and no price service.
func New(network *types.NetworkInfo, client clients.NodeClient, opts ...Option) *Engine {
	e := &Engine{
		network:    network,
		client:     client,
		log:        logger.NoopLogger{},
		metrics:    metrics.NoopRecorder{},
		graceDelay: 10 * time.Second,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the funding decision for req and, in the send path, submits
// the transfer. The returned Outcome is nil unless a transaction was
// submitted and confirmed. Exactly one submission is possible per call.
func (e *Engine) Run(ctx context.Context, req *types.FundingRequest) (*types.Decision, *types.Outcome, error) {
	start := time.Now()
	labels := map[string]string{"network": req.Network.String()}
	defer func() {
		e.metrics.ObserveLatency("run", time.Since(start), labels)
	}()

	if !common.IsHexAddress(req.Receiver) {
		return nil, nil, &types.GasFundError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("invalid receiver address: %s", req.Receiver),
		}
	}
	receiver := common.HexToAddress(req.Receiver)

	// Connectivity confirmation. The chain id is only logged, never
	// branched on.
	chainID, err := e.client.ChainID(ctx)
	if err != nil {
		return nil, nil, e.nodeErr("chain id query failed", err)
	}
	e.log.Info("connected", map[string]any{
		"network":  req.Network,
		"chain_id": chainID.String(),
		"funder":   e.client.FunderAddress().Hex(),
	})

	// Best-effort USD quote. The sole recovered failure in the run.
	quote := pricing.Unavailable()
	if e.pricer != nil {
		quote = e.pricer.NativeUSD(ctx, e.network.CoinGeckoID)
	}
	if !quote.Available {
		e.log.Warn("native coin price unavailable, USD figures will show "+pricing.USDPlaceholder,
			map[string]any{"symbol": e.network.NativeSymbol})
	}

	funderBalance, err := e.client.BalanceAt(ctx, e.client.FunderAddress())
	if err != nil {
		return nil, nil, e.nodeErr("funder balance query failed", err)
	}
	gasPrice, err := e.client.GasPrice(ctx)
	if err != nil {
		return nil, nil, e.nodeErr("gas price query failed", err)
	}
	e.log.Info("funder state", map[string]any{
		"balance":     e.native(funderBalance),
		"balance_usd": e.usd(funderBalance, quote),
		"gas_price":   gasPrice.String(),
	})

	// Solvency check comes before any receiver lookup: an underfunded
	// funder terminates the run regardless of mode.
	required := RequiredCost(gasPrice, req.GasAmount)
	if funderBalance.Cmp(required) < 0 {
		decision := Decide(funderBalance, gasPrice, req.GasAmount, req.Mode, nil)
		e.metrics.IncCounter("decision_insufficient", labels)
		e.log.Error("insufficient funder balance", map[string]any{
			"required":      e.native(decision.RequiredCost),
			"required_usd":  e.usd(decision.RequiredCost, quote),
			"shortfall":     e.native(decision.Shortfall),
			"shortfall_usd": e.usd(decision.Shortfall, quote),
		})
		return &decision, nil, nil
	}

	var receiverBalance *big.Int
	if req.Mode == types.ModeDifference {
		receiverBalance, err = e.client.BalanceAt(ctx, receiver)
		if err != nil {
			return nil, nil, e.nodeErr("receiver balance query failed", err)
		}
		e.log.Info("receiver state", map[string]any{
			"receiver":    receiver.Hex(),
			"balance":     e.native(receiverBalance),
			"balance_usd": e.usd(receiverBalance, quote),
		})
	}

	decision := Decide(funderBalance, gasPrice, req.GasAmount, req.Mode, receiverBalance)

	if decision.Kind == types.DecisionNoop {
		e.metrics.IncCounter("decision_noop", labels)
		e.log.Info("receiver already sufficiently funded", map[string]any{
			"receiver": receiver.Hex(),
			"required": e.native(decision.RequiredCost),
		})
		return &decision, nil, nil
	}

	e.log.Info("funding required", map[string]any{
		"receiver":   receiver.Hex(),
		"amount":     e.native(decision.AmountToSend),
		"amount_usd": e.usd(decision.AmountToSend, quote),
		"mode":       req.Mode,
	})

	if e.dryRun {
		e.metrics.IncCounter("decision_dry_run", labels)
		e.log.Info("dry run, not submitting", map[string]any{
			"amount": e.native(decision.AmountToSend),
		})
		return &decision, nil, nil
	}

	e.metrics.IncCounter("decision_send", labels)
	if e.graceDelay > 0 {
		e.log.Info("submitting after grace delay, interrupt to cancel", map[string]any{
			"delay": e.graceDelay.String(),
		})
	}
	if err := e.sleep(ctx, e.graceDelay); err != nil {
		return &decision, nil, err
	}

	outcome, err := e.client.Transfer(ctx, receiver, decision.AmountToSend, gasPrice)
	if err != nil {
		e.metrics.IncCounter("submit_failed", labels)
		return &decision, nil, &types.GasFundError{
			Code:    types.ErrSubmitError,
			Message: fmt.Sprintf("transfer failed: %v", err),
		}
	}

	e.metrics.IncCounter("submit_confirmed", labels)
	e.log.Info("transfer confirmed", map[string]any{
		"tx":       outcome.TxHash,
		"block":    outcome.BlockNumber,
		"gas_used": outcome.GasUsed,
		"success":  outcome.Success,
	})
	return &decision, outcome, nil
}

func (e *Engine) native(amount *big.Int) string {
	return pricing.Native(amount, e.network.NativeDecimals, e.network.NativeSymbol)
}

func (e *Engine) usd(amount *big.Int, q pricing.Quote) string {
	return pricing.USD(amount, e.network.NativeDecimals, q)
}

func (e *Engine) nodeErr(msg string, err error) error {
	return &types.GasFundError{
		Code:    types.ErrNodeError,
		Message: fmt.Sprintf("%s: %v", msg, err),
	}
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
