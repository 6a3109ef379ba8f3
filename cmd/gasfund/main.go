// Command gasfund funds an account with enough native currency to cover a
// requested amount of transaction gas. One funding decision per invocation.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vitwit/gasfund/clients"
	"github.com/vitwit/gasfund/config"
	"github.com/vitwit/gasfund/funding"
	"github.com/vitwit/gasfund/logger"
	"github.com/vitwit/gasfund/metrics"
	"github.com/vitwit/gasfund/networks"
	"github.com/vitwit/gasfund/pricing"
	"github.com/vitwit/gasfund/types"
)

const diffArg = "diff"

var rootCmd = &cobra.Command{
	Use:   "gasfund <network> <gasAmount> <receiver> [diff]",
	Short: "Fund an account with enough native currency for a given amount of gas",
	Long: `Fund an account with enough native chain currency to cover the cost of
a requested amount of transaction gas at the current gas price.

The trailing "diff" argument tops up only the shortfall between the
required cost and the receiver's current balance instead of sending the
full amount.

Configuration comes from the environment (a .env file is honored):
  GASFUND_PRIVATE_KEY       funder account hex private key (required)
  GASFUND_RPC_URL           node RPC endpoint
  GASFUND_RPC_URL_TEMPLATE  endpoint template with a {network} placeholder
  GASFUND_DRY_RUN           if set, compute and log but never submit
  GASFUND_GRACE_DELAY       interrupt window before submission (default 10s)

Examples:
  gasfund sepolia 50000000 0x70997970C51812dc3A010C7d01b50e0d17dc79C8
  gasfund polygon 21000 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 diff`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runFund,

	SilenceUsage: true,
}

func runFund(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	req, err := parseRequest(args)
	if err != nil {
		return err
	}

	network, err := networks.Lookup(req.Network.String())
	if err != nil {
		return err
	}

	client, err := clients.NewEVMClient(cfg.EndpointFor(network.Network), cfg.PrivateKey)
	if err != nil {
		return err
	}
	defer client.Close()

	opts := []funding.Option{
		funding.WithLogger(logger.NewZapLogger(cfg.LogLevel)),
		funding.WithPricer(pricing.NewCoinGecko(os.Getenv("COINGECKO_API_KEY"))),
		funding.WithGraceDelay(cfg.GraceDelay),
		funding.WithDryRun(cfg.DryRun),
	}
	if cfg.MetricsEnabled {
		opts = append(opts, funding.WithMetrics(metrics.NewPrometheusRecorder()))
	}

	engine := funding.New(network, client, opts...)
	_, _, err = engine.Run(cmd.Context(), req)
	return err
}

func parseRequest(args []string) (*types.FundingRequest, error) {
	gasAmount, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil || gasAmount == 0 {
		return nil, &types.GasFundError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("gasAmount must be a positive integer, got %q", args[1]),
		}
	}

	mode := types.ModeAbsolute
	if len(args) == 4 && args[3] == diffArg {
		mode = types.ModeDifference
	}

	return &types.FundingRequest{
		Network:   types.Network(args[0]),
		GasAmount: gasAmount,
		Receiver:  args[2],
		Mode:      mode,
	}, nil
}

func main() {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
