// Package store defines the durable memo shared by the locator and the
// token metadata service. Entries are write-once facts about finalized
// transactions, so there is no TTL and no eviction.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a key has no recorded value.
var ErrNotFound = errors.New("store resource not found")

// TokenMeta is the resolved metadata of a wrapped asset on a destination chain.
type TokenMeta struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Store persists located redemptions and resolved token metadata.
type Store interface {
	// GetRedemption returns the redeem tx hash recorded for a source tx hash,
	// or ErrNotFound when the transfer has not been located yet.
	GetRedemption(ctx context.Context, network, srcTxHash string) (string, error)
	// PutRedemption records a located redemption. Writing the same value twice
	// is a no-op; concurrent writers resolve last-writer-wins.
	PutRedemption(ctx context.Context, network, srcTxHash, redeemTxHash string) error

	GetTokenMeta(ctx context.Context, chain, address string) (TokenMeta, error)
	PutTokenMeta(ctx context.Context, chain, address string, meta TokenMeta) error

	Close() error
}

// NormalizeTxHash canonicalizes hex hashes so lookups are case-insensitive.
// Base58 signatures are case-sensitive and pass through untouched.
func NormalizeTxHash(h string) string {
	if strings.HasPrefix(h, "0x") || strings.HasPrefix(h, "0X") {
		return strings.ToLower(h)
	}
	return h
}

// RedemptionKey builds the namespaced key for a located redemption.
// The format is "redemption:<network>:<source tx hash>".
func RedemptionKey(network, srcTxHash string) string {
	return fmt.Sprintf("redemption:%s:%s", network, NormalizeTxHash(srcTxHash))
}

// TokenMetaKey builds the namespaced key for wrapped-asset metadata.
// The format is "token:<chain>:<address>".
func TokenMetaKey(chain, address string) string {
	return fmt.Sprintf("token:%s:%s", chain, NormalizeTxHash(address))
}
