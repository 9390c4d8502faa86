// Package solscan searches account-indexed Solana history for the redemption
// of a bridge transfer. The destination wallet's signature history is walked
// newest-first, trimmed to the window after the transfer, and the surviving
// transactions are decoded for wrapped-asset mint instructions.
package solscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainscope/redeemscan/pkg/config"
	"github.com/chainscope/redeemscan/pkg/locator"
	"github.com/chainscope/redeemscan/pkg/solana"
)

// ChainClient is the subset of the Solana client the scanner depends on.
type ChainClient interface {
	GetSignaturesForAddress(ctx context.Context, address string, opts *solana.GetSignaturesOpts) ([]solana.SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*solana.TransactionResult, error)
}

// Scanner finds candidate mint instructions in a wallet's recent history.
type Scanner struct {
	client       ChainClient
	tokenProgram string
	cfg          config.ScannerConfig
	logger       *zap.Logger
}

// NewScanner creates a Solana scanner. tokenProgram is the SPL token program
// id; instructions from any other program are ignored.
func NewScanner(client ChainClient, tokenProgram string, cfg config.ScannerConfig, logger *zap.Logger) *Scanner {
	return &Scanner{
		client:       client,
		tokenProgram: tokenProgram,
		cfg:          cfg,
		logger:       logger,
	}
}

// FindCandidates returns the mint instructions found in the wallet's history
// at or after (transfer time - slack). When more signatures survive the time
// filter than CandidateCap, only the newest half-cap and the oldest half-cap
// are inspected: they cover both a redemption that happened quickly and one
// right at the transfer time, at a bounded RPC cost.
func (s *Scanner) FindCandidates(ctx context.Context, query locator.TransferQuery) ([]locator.CandidateEvent, error) {
	filtered, err := s.collectSignatures(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(filtered) > s.cfg.CandidateCap {
		half := s.cfg.CandidateCap / 2
		trimmed := make([]solana.SignatureInfo, 0, 2*half)
		trimmed = append(trimmed, filtered[:half]...)
		trimmed = append(trimmed, filtered[len(filtered)-half:]...)
		s.logger.Debug("Trimmed candidate signatures",
			zap.Int("filtered", len(filtered)),
			zap.Int("inspected", len(trimmed)))
		filtered = trimmed
	}

	// Details are fetched concurrently; indexing by position keeps the
	// newest-first match order deterministic regardless of completion order.
	results := make([]*solana.TransactionResult, len(filtered))
	limit := s.cfg.FetchConcurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, sig := range filtered {
		g.Go(func() error {
			tx, err := s.client.GetTransaction(gctx, sig.Signature)
			if err != nil {
				if errors.Is(err, solana.ErrTransactionNotFound) {
					// Pruned from the node's retention window.
					return nil
				}
				return err
			}
			results[i] = tx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch transaction details: %w", err)
	}

	var candidates []locator.CandidateEvent
	for i, tx := range results {
		if tx == nil || tx.Meta == nil || tx.Meta.Err != nil {
			continue
		}
		blockTime := int64(0)
		if tx.BlockTime != nil {
			blockTime = *tx.BlockTime
		}
		for _, inst := range collectInstructions(tx) {
			if candidate, ok := s.decodeMint(inst, filtered[i].Signature, blockTime); ok {
				candidates = append(candidates, candidate)
			}
		}
	}
	return candidates, nil
}

// collectSignatures pages through the wallet history newest-first, dropping
// failed transactions and stopping at the first entry older than the slack
// window. Entries without a block time are kept.
func (s *Scanner) collectSignatures(ctx context.Context, query locator.TransferQuery) ([]solana.SignatureInfo, error) {
	cutoff := query.Timestamp.Add(-s.cfg.Slack).Unix()

	var filtered []solana.SignatureInfo
	var before string
	for {
		sigs, err := s.client.GetSignaturesForAddress(ctx, query.Address, &solana.GetSignaturesOpts{
			Limit:  s.cfg.PageLimit,
			Before: before,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list signatures for %s: %w", query.Address, err)
		}
		if len(sigs) == 0 {
			return filtered, nil
		}

		for _, sig := range sigs {
			if sig.BlockTime != nil && *sig.BlockTime < cutoff {
				// History is newest-first: everything further back is older.
				return filtered, nil
			}
			if sig.Err != nil {
				// A failed transaction cannot have minted anything.
				continue
			}
			filtered = append(filtered, sig)
		}

		if len(sigs) < s.cfg.PageLimit {
			return filtered, nil
		}
		before = sigs[len(sigs)-1].Signature
	}
}

// collectInstructions flattens a parsed transaction into its top-level
// instructions followed by the inner instructions of each invocation. Bridge
// redemptions mint through an inner instruction of the redeem call.
func collectInstructions(tx *solana.TransactionResult) []solana.Instruction {
	instructions := make([]solana.Instruction, 0, len(tx.Transaction.Message.Instructions))
	instructions = append(instructions, tx.Transaction.Message.Instructions...)
	for _, inner := range tx.Meta.InnerInstructions {
		instructions = append(instructions, inner.Instructions...)
	}
	return instructions
}

func (s *Scanner) decodeMint(inst solana.Instruction, signature string, blockTime int64) (locator.CandidateEvent, bool) {
	if inst.Program != "spl-token" || len(inst.Parsed) == 0 {
		return locator.CandidateEvent{}, false
	}
	if s.tokenProgram != "" && inst.ProgramID != s.tokenProgram {
		return locator.CandidateEvent{}, false
	}

	var parsed solana.ParsedInstruction
	if err := json.Unmarshal(inst.Parsed, &parsed); err != nil {
		return locator.CandidateEvent{}, false
	}
	if parsed.Type != "mintTo" && parsed.Type != "mintToChecked" {
		return locator.CandidateEvent{}, false
	}

	var info solana.MintInfo
	if err := json.Unmarshal(parsed.Info, &info); err != nil {
		return locator.CandidateEvent{}, false
	}
	amount, ok := new(big.Int).SetString(info.RawAmount(), 10)
	if !ok {
		return locator.CandidateEvent{}, false
	}

	var decimals uint8
	if info.TokenAmount != nil {
		decimals = uint8(info.TokenAmount.Decimals)
	}
	return locator.CandidateEvent{
		TxHash:    signature,
		BlockTime: blockTime,
		Kind:      locator.KindMint,
		Token:     info.Mint,
		Amount:    amount,
		Program:   info.MintAuthority,
		Decimals:  decimals,
	}, true
}
