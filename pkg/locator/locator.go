// Package locator correlates a cross-chain bridge transfer with the
// destination-chain transaction that redeemed it. Lookups check the durable
// result cache first, then dispatch to the scanner registered for the source
// chain and evaluate its candidates in order until one is accepted.
package locator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chainscope/redeemscan/internal/metrics"
	"github.com/chainscope/redeemscan/pkg/chains"
	"github.com/chainscope/redeemscan/pkg/store"
)

// ResultCache memoizes located redemptions keyed by source transaction hash.
// Reads return store.ErrNotFound on a miss. Writes are idempotent for equal
// values and last-writer-wins under concurrent writers.
type ResultCache interface {
	GetRedemption(ctx context.Context, network, sourceTxHash string) (string, error)
	PutRedemption(ctx context.Context, network, sourceTxHash, redeemTxHash string) error
}

// Scanner finds candidate redemption events for one chain family, ordered
// most-likely first. An empty result is not an error.
type Scanner interface {
	FindCandidates(ctx context.Context, query TransferQuery) ([]CandidateEvent, error)
}

// Matcher decides whether a candidate event is the redemption of the queried
// transfer. Candidates of KindRedeemed are accepted without consulting it.
type Matcher interface {
	Matches(ctx context.Context, query TransferQuery, candidate CandidateEvent) bool
}

// Route pairs the scanner for a source chain with the matching policy of its
// destination family.
type Route struct {
	Scanner Scanner
	Matcher Matcher
}

// Locator orchestrates a redemption lookup end to end.
type Locator struct {
	cache  ResultCache
	routes map[chains.ID]Route
	logger *zap.Logger
}

// NewLocator creates a locator with no routes registered.
func NewLocator(cache ResultCache, logger *zap.Logger) *Locator {
	return &Locator{
		cache:  cache,
		routes: make(map[chains.ID]Route),
		logger: logger,
	}
}

// RegisterRoute installs the scanner and matcher for a source chain.
func (l *Locator) RegisterRoute(id chains.ID, scanner Scanner, matcher Matcher) {
	l.routes[id] = Route{Scanner: scanner, Matcher: matcher}
}

// Locate returns the destination transaction that redeemed the queried
// transfer. It returns ErrNotRedeemed when scanning exhausts all candidates,
// ErrUnknownChain for unrouted source chains and ErrUpstream when a chain RPC
// fails. A cache hit answers without touching any chain RPC; cache failures
// degrade to a live scan.
func (l *Locator) Locate(ctx context.Context, query TransferQuery) (*Result, error) {
	start := time.Now()
	chain := query.ChainID.String()

	cached, err := l.cache.GetRedemption(ctx, string(query.Network), query.TxHash)
	switch {
	case err == nil:
		metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
		metrics.LookupsTotal.WithLabelValues(chain, "cache_hit").Inc()
		return &Result{SourceTxHash: query.TxHash, RedeemTxHash: cached, Cached: true}, nil
	case errors.Is(err, store.ErrNotFound):
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
	default:
		// The cache is an optimization, not a dependency: scan anyway.
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		l.logger.Warn("Redemption cache read failed",
			zap.String("chain", chain),
			zap.String("source_tx", query.TxHash),
			zap.Error(err))
	}

	route, ok := l.routes[query.ChainID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChain, chain)
	}

	candidates, err := route.Scanner.FindCandidates(ctx, query)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues(chain, "upstream_error").Inc()
		return nil, errors.Join(ErrUpstream, fmt.Errorf("failed to scan %s: %w", chain, err))
	}
	metrics.CandidatesExamined.WithLabelValues(chain).Observe(float64(len(candidates)))

	for _, candidate := range candidates {
		if candidate.Kind != KindRedeemed && !route.Matcher.Matches(ctx, query, candidate) {
			continue
		}

		l.logger.Info("Redemption located",
			zap.String("chain", chain),
			zap.String("source_tx", query.TxHash),
			zap.String("redeem_tx", candidate.TxHash),
			zap.String("kind", string(candidate.Kind)),
			zap.Duration("elapsed", time.Since(start)))

		if err := l.cache.PutRedemption(ctx, string(query.Network), query.TxHash, candidate.TxHash); err != nil {
			// The result is still valid, it just was not memoized.
			l.logger.Warn("Failed to cache redemption",
				zap.String("source_tx", query.TxHash),
				zap.Error(err))
		}

		metrics.LookupsTotal.WithLabelValues(chain, "found").Inc()
		metrics.LookupDuration.WithLabelValues(chain).Observe(time.Since(start).Seconds())
		return &Result{SourceTxHash: query.TxHash, RedeemTxHash: candidate.TxHash}, nil
	}

	metrics.LookupsTotal.WithLabelValues(chain, "not_found").Inc()
	metrics.LookupDuration.WithLabelValues(chain).Observe(time.Since(start).Seconds())
	return nil, fmt.Errorf("%w: source tx %s", ErrNotRedeemed, query.TxHash)
}
