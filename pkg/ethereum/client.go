// Package ethereum wraps go-ethereum's RPC client with the read-only
// queries redemption scanning needs: head and header-timestamp lookups,
// filtered log queries and ERC-20 metadata calls, rate limited per chain.
package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/chainscope/redeemscan/pkg/config"
	"github.com/chainscope/redeemscan/pkg/ratelimit"
)

// Client is a read-only JSON-RPC client for a single EVM chain.
type Client struct {
	chain   string
	client  *ethclient.Client
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

// NewClient creates a new EVM client for the named chain
func NewClient(chain string, cfg config.EVMChainConfig, logger *zap.Logger) (*Client, error) {
	// Connect to the chain RPC
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s RPC: %w", chain, err)
	}

	logger.Info("Connected to EVM chain",
		zap.String("chain", chain),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("bridge_contract", cfg.BridgeContract))

	return &Client{
		chain:   chain,
		client:  client,
		limiter: ratelimit.NewLimiter(cfg.RPS, cfg.Burst, chain),
		logger:  logger,
	}, nil
}

// Close closes the underlying RPC connection
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Chain returns the chain name the client was configured with
func (c *Client) Chain() string {
	return c.chain
}

// GetLatestBlockNumber gets the latest block number
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	header, err := c.client.HeaderByNumber(ctx, nil)
	ratelimit.RecordRPCCall(c.chain, "eth_getBlockByNumber", err)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// HeaderTimeByNumber returns the unix timestamp of the block at the given height
func (c *Client) HeaderTimeByNumber(ctx context.Context, number uint64) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	header, err := c.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	ratelimit.RecordRPCCall(c.chain, "eth_getBlockByNumber", err)
	if err != nil {
		return 0, fmt.Errorf("failed to get block %d: %w", number, err)
	}
	return header.Time, nil
}

// FilterLogs runs a filtered log query against the chain
func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	logs, err := c.client.FilterLogs(ctx, q)
	ratelimit.RecordRPCCall(c.chain, "eth_getLogs", err)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs on %s: %w", c.chain, err)
	}
	return logs, nil
}
