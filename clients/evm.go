package clients

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	gftypes "github.com/vitwit/gasfund/types"
)

var _ NodeClient = (*EVMClient)(nil)

// transferGasLimit is the fixed gas limit of a plain value transfer.
const transferGasLimit = 21000

// EVMClient provides the node functionality the funding engine needs on an
// EVM chain: chain id, gas price, balances and a one-shot signed transfer.
type EVMClient struct {
	rpcURL string
	client *ethclient.Client

	privateKey *ecdsa.PrivateKey
	funder     common.Address

	// chainID is cached after the first query; it never changes for a
	// given endpoint.
	chainID *big.Int
}

// NewEVMClient dials the RPC endpoint and derives the funder address from
// the hex-encoded private key.
func NewEVMClient(rpcURL, privateKeyHex string) (*EVMClient, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrInvalidKey, err)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to %s: %w", ErrRPCDial, rpcURL, err)
	}

	return &EVMClient{
		rpcURL:     rpcURL,
		client:     client,
		privateKey: key,
		funder:     crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// FunderAddress implements NodeClient.
func (e *EVMClient) FunderAddress() common.Address {
	return e.funder
}

// ChainID implements NodeClient.
func (e *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	if e.chainID != nil {
		return e.chainID, nil
	}
	id, err := e.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrChainIDFailed, err)
	}
	e.chainID = id
	return id, nil
}

// GasPrice implements NodeClient.
func (e *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrGasPriceFailed, err)
	}
	return price, nil
}

// BalanceAt implements NodeClient. It queries the latest block.
func (e *EVMClient) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	bal, err := e.client.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", ErrBalanceFailed, account.Hex(), err)
	}
	return bal, nil
}

// Transfer signs and submits a value transfer of amount wei to the receiver
// at the given gas price, then blocks until the transaction is mined.
func (e *EVMClient) Transfer(ctx context.Context, to common.Address, amount, gasPrice *big.Int) (*gftypes.Outcome, error) {
	chainID, err := e.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	nonce, err := e.client.PendingNonceAt(ctx, e.funder)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrNonceFailed, err)
	}

	tx := ethtypes.NewTransaction(nonce, to, amount, transferGasLimit, gasPrice, nil)

	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(chainID), e.privateKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSignFailed, err)
	}

	if err := e.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSendFailed, err)
	}

	receipt, err := bind.WaitMined(ctx, e.client, signedTx)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", ErrConfirmationFailed, signedTx.Hash().Hex(), err)
	}

	return &gftypes.Outcome{
		TxHash:      signedTx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Success:     receipt.Status == ethtypes.ReceiptStatusSuccessful,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// Close implements NodeClient.
func (e *EVMClient) Close() {
	e.client.Close()
}
