package solscan

import (
	"context"
	"math/big"
	"strings"

	"github.com/chainscope/redeemscan/pkg/config"
	"github.com/chainscope/redeemscan/pkg/locator"
)

// MintMatcher accepts wrapped-asset mint instructions that credit the queried
// token, come from the bridge's mint authority and land within an absolute
// amount tolerance. A difference exactly equal to the tolerance is rejected.
type MintMatcher struct {
	authority string
	tolerance *big.Int
}

// NewMintMatcher creates the matcher. An empty authority disables the
// authority check for deployments that do not pin one.
func NewMintMatcher(authority string, cfg config.MatcherConfig) *MintMatcher {
	return &MintMatcher{
		authority: authority,
		tolerance: big.NewInt(cfg.MintTolerance),
	}
}

// Matches reports whether the candidate mint redeems the queried transfer.
func (m *MintMatcher) Matches(_ context.Context, query locator.TransferQuery, candidate locator.CandidateEvent) bool {
	if candidate.Kind != locator.KindMint {
		return false
	}
	if candidate.Amount == nil || query.Amount == nil {
		return false
	}
	if !strings.EqualFold(candidate.Token, query.Token) {
		return false
	}
	if m.authority != "" && candidate.Program != m.authority {
		return false
	}

	diff := new(big.Int).Sub(candidate.Amount, query.Amount)
	diff.Abs(diff)
	return diff.Cmp(m.tolerance) < 0
}
