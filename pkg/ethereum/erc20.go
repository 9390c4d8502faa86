package ethereum

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/chainscope/redeemscan/pkg/ratelimit"
)

const erc20MetadataABI = `[
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"}
]`

var erc20ABI = mustParseABI(erc20MetadataABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// TokenSymbol reads symbol() from an ERC-20 contract
func (c *Client) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	data, err := c.callToken(ctx, token, "symbol")
	if err != nil {
		return "", err
	}
	out, err := erc20ABI.Unpack("symbol", data)
	if err != nil {
		return "", fmt.Errorf("failed to decode symbol of %s: %w", token.Hex(), err)
	}
	symbol, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected symbol type for %s", token.Hex())
	}
	return symbol, nil
}

// TokenDecimals reads decimals() from an ERC-20 contract
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := c.callToken(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}
	out, err := erc20ABI.Unpack("decimals", data)
	if err != nil {
		return 0, fmt.Errorf("failed to decode decimals of %s: %w", token.Hex(), err)
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type for %s", token.Hex())
	}
	return decimals, nil
}

func (c *Client) callToken(ctx context.Context, token common.Address, method string) ([]byte, error) {
	input, err := erc20ABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	data, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: input}, nil)
	ratelimit.RecordRPCCall(c.chain, "eth_call", err)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, token.Hex(), err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty %s response from %s", method, token.Hex())
	}
	return data, nil
}
