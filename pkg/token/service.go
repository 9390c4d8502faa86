// Package token resolves wrapped-asset metadata on destination chains and
// memoizes it in the durable store. Decimals feed the transfer matcher's
// normalized amount comparison; symbols serve the metadata endpoint.
package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainscope/redeemscan/internal/metrics"
	"github.com/chainscope/redeemscan/pkg/store"
)

// ErrUnknownChain is returned when no metadata reader is registered for the
// requested chain.
var ErrUnknownChain = errors.New("no metadata reader for chain")

// ChainReader reads ERC-20 metadata from a destination chain.
type ChainReader interface {
	TokenSymbol(ctx context.Context, token common.Address) (string, error)
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
}

// MetaCache is the subset of the store the service uses.
type MetaCache interface {
	GetTokenMeta(ctx context.Context, chain, address string) (store.TokenMeta, error)
	PutTokenMeta(ctx context.Context, chain, address string, meta store.TokenMeta) error
}

// Meta is resolved token metadata plus where it came from.
type Meta struct {
	Symbol   string
	Decimals uint8
	Cached   bool
}

// Service answers symbol/decimals lookups, reading through the cache. Token
// metadata is immutable on every chain this service targets, so entries are
// written once and live forever.
type Service struct {
	cache   MetaCache
	readers map[string]ChainReader
	logger  *zap.Logger
}

// NewService creates a token metadata service with no chains registered.
func NewService(cache MetaCache, logger *zap.Logger) *Service {
	return &Service{
		cache:   cache,
		readers: make(map[string]ChainReader),
		logger:  logger,
	}
}

// RegisterChain installs the metadata reader for a chain.
func (s *Service) RegisterChain(chain string, reader ChainReader) {
	s.readers[chain] = reader
}

// Resolve returns the symbol and decimals of a token contract. Cache misses
// read from the chain and memoize the result; cache failures degrade to a
// live read.
func (s *Service) Resolve(ctx context.Context, chain, address string) (*Meta, error) {
	cached, err := s.cache.GetTokenMeta(ctx, chain, address)
	switch {
	case err == nil:
		metrics.TokenResolutionsTotal.WithLabelValues(chain, "cache").Inc()
		return &Meta{Symbol: cached.Symbol, Decimals: cached.Decimals, Cached: true}, nil
	case !errors.Is(err, store.ErrNotFound):
		s.logger.Warn("Token metadata cache read failed",
			zap.String("chain", chain),
			zap.String("token", address),
			zap.Error(err))
	}

	reader, ok := s.readers[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChain, chain)
	}

	token := common.HexToAddress(address)
	symbol, err := reader.TokenSymbol(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to read token symbol: %w", err)
	}
	decimals, err := reader.TokenDecimals(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to read token decimals: %w", err)
	}
	metrics.TokenResolutionsTotal.WithLabelValues(chain, "chain").Inc()

	resolved := store.TokenMeta{Symbol: symbol, Decimals: decimals}
	if err := s.cache.PutTokenMeta(ctx, chain, address, resolved); err != nil {
		s.logger.Warn("Failed to cache token metadata",
			zap.String("chain", chain),
			zap.String("token", address),
			zap.Error(err))
	}

	return &Meta{Symbol: symbol, Decimals: decimals}, nil
}

// Decimals returns just the precision of a destination token contract.
func (s *Service) Decimals(ctx context.Context, chain, address string) (uint8, error) {
	meta, err := s.Resolve(ctx, chain, address)
	if err != nil {
		return 0, err
	}
	return meta.Decimals, nil
}
