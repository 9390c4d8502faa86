package evmscan

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainscope/redeemscan/pkg/config"
	"github.com/chainscope/redeemscan/pkg/locator"
)

// BridgeDecimals is the fixed precision of the bridge's transfer amounts.
// The token bridge truncates every amount to 8 decimals in transit, so the
// query amount is always denominated this way regardless of source decimals.
const BridgeDecimals = 8

// DecimalsSource resolves the precision of a destination token contract.
type DecimalsSource interface {
	Decimals(ctx context.Context, chain, token string) (uint8, error)
}

// TransferMatcher is the fallback amount heuristic for EVM destinations. The
// same logical amount is represented in different base units on different
// chains, so a candidate is accepted when either the raw base amounts are
// within an absolute tolerance, or the amounts agree after each side is
// normalized by its own precision. A difference exactly equal to a tolerance
// is rejected.
type TransferMatcher struct {
	chain         string
	meta          DecimalsSource
	tolerance     *big.Int
	normTolerance decimal.Decimal
	logger        *zap.Logger
}

// NewTransferMatcher creates the matcher for one destination chain.
func NewTransferMatcher(chain string, meta DecimalsSource, cfg config.MatcherConfig, logger *zap.Logger) *TransferMatcher {
	return &TransferMatcher{
		chain:         chain,
		meta:          meta,
		tolerance:     big.NewInt(cfg.TransferTolerance),
		normTolerance: decimal.NewFromFloat(cfg.NormalizedTolerance),
		logger:        logger,
	}
}

// Matches reports whether the candidate transfer credits an amount close
// enough to the queried one.
func (m *TransferMatcher) Matches(ctx context.Context, query locator.TransferQuery, candidate locator.CandidateEvent) bool {
	if candidate.Amount == nil || query.Amount == nil {
		return false
	}

	diff := new(big.Int).Sub(candidate.Amount, query.Amount)
	diff.Abs(diff)
	if diff.Cmp(m.tolerance) < 0 {
		return true
	}

	decimals := candidate.Decimals
	if decimals == 0 {
		resolved, err := m.meta.Decimals(ctx, m.chain, candidate.Token)
		if err != nil {
			// Metadata is best effort; assume the bridge representation.
			m.logger.Debug("Token decimals unavailable, assuming bridge precision",
				zap.String("chain", m.chain),
				zap.String("token", candidate.Token),
				zap.Error(err))
			decimals = BridgeDecimals
		} else {
			decimals = resolved
		}
	}

	candNorm := decimal.NewFromBigInt(candidate.Amount, -int32(decimals))
	queryNorm := decimal.NewFromBigInt(query.Amount, -BridgeDecimals)
	return candNorm.Sub(queryNorm).Abs().LessThan(m.normTolerance)
}
