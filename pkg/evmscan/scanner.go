// Package evmscan searches event-indexed EVM chains for the redemption of a
// bridge transfer. Each scan window is queried twice: once for the bridge's
// TransferRedeemed event keyed by sequence number, which identifies the
// redemption exactly, and once for ERC-20 Transfer logs to the destination
// wallet, which feed the fallback amount heuristic.
package evmscan

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/chainscope/redeemscan/pkg/config"
	"github.com/chainscope/redeemscan/pkg/locator"
)

// ChainClient is the subset of the EVM client the scanner depends on.
type ChainClient interface {
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
	HeaderTimeByNumber(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// Scanner finds candidate redemption events on one EVM destination chain.
type Scanner struct {
	chain  string
	client ChainClient
	finder *RangeFinder
	bridge common.Address
	logger *zap.Logger
}

// NewScanner creates a scanner for the named chain. bridge is the token
// bridge contract whose TransferRedeemed events mark completed redemptions.
func NewScanner(chain string, client ChainClient, bridge common.Address, cfg config.ScannerConfig, logger *zap.Logger) *Scanner {
	return &Scanner{
		chain:  chain,
		client: client,
		finder: NewRangeFinder(client, cfg),
		bridge: bridge,
		logger: logger,
	}
}

// FindCandidates scans the widening block windows around the transfer time.
// A TransferRedeemed hit ends the scan immediately and is the only candidate
// returned. Otherwise the collected Transfer logs form the fallback pool,
// ordered by block and log index. An empty pool is not an error.
func (s *Scanner) FindCandidates(ctx context.Context, query locator.TransferQuery) ([]locator.CandidateEvent, error) {
	ranges, err := s.finder.FindRanges(ctx, query.Timestamp)
	if err != nil {
		return nil, err
	}

	recipient := common.HexToAddress(query.Address)

	var pool []types.Log
	seen := make(map[string]struct{})

	for _, r := range ranges {
		redeemed, err := s.filterRedeemed(ctx, r, query)
		if err != nil {
			return nil, err
		}
		if redeemed != nil {
			s.logger.Info("Redemption event matched",
				zap.String("chain", s.chain),
				zap.Uint64("sequence", query.Sequence),
				zap.String("redeem_tx", redeemed.TxHash.Hex()),
				zap.Uint64("block", redeemed.BlockNumber))
			return []locator.CandidateEvent{{
				TxHash:  redeemed.TxHash.Hex(),
				Kind:    locator.KindRedeemed,
				Program: redeemed.Address.Hex(),
			}}, nil
		}

		transfers, err := s.filterTransfers(ctx, r, recipient)
		if err != nil {
			return nil, err
		}
		// Windows overlap, so the same log can come back more than once.
		for _, log := range transfers {
			key := fmt.Sprintf("%s:%d", log.TxHash.Hex(), log.Index)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			pool = append(pool, log)
		}

		s.logger.Debug("Scanned block range",
			zap.String("chain", s.chain),
			zap.Uint64("from_block", r.From),
			zap.Uint64("to_block", r.To),
			zap.Int("pool_size", len(pool)))
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].BlockNumber != pool[j].BlockNumber {
			return pool[i].BlockNumber < pool[j].BlockNumber
		}
		return pool[i].Index < pool[j].Index
	})

	candidates := make([]locator.CandidateEvent, 0, len(pool))
	for _, log := range pool {
		candidates = append(candidates, locator.CandidateEvent{
			TxHash: log.TxHash.Hex(),
			Kind:   locator.KindTransfer,
			Token:  log.Address.Hex(),
			Amount: new(big.Int).SetBytes(log.Data),
		})
	}
	return candidates, nil
}

func (s *Scanner) filterRedeemed(ctx context.Context, r BlockRange, query locator.TransferQuery) (*types.Log, error) {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(r.From),
		ToBlock:   new(big.Int).SetUint64(r.To),
		Addresses: []common.Address{s.bridge},
		Topics: [][]common.Hash{
			{TransferRedeemedTopic},
			{EmitterChainTopic(uint16(query.ChainID))},
			nil,
			{SequenceTopic(query.Sequence)},
		},
	}
	logs, err := s.client.FilterLogs(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

func (s *Scanner) filterTransfers(ctx context.Context, r BlockRange, recipient common.Address) ([]types.Log, error) {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(r.From),
		ToBlock:   new(big.Int).SetUint64(r.To),
		Topics: [][]common.Hash{
			{TransferTopic},
			nil,
			{AddressTopic(recipient)},
		},
	}
	return s.client.FilterLogs(ctx, q)
}
