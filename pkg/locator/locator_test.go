package locator

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chainscope/redeemscan/pkg/chains"
	"github.com/chainscope/redeemscan/pkg/store"
)

type mockCache struct {
	getFunc func(ctx context.Context, network, sourceTxHash string) (string, error)
	putFunc func(ctx context.Context, network, sourceTxHash, redeemTxHash string) error
	puts    int
}

func (m *mockCache) GetRedemption(ctx context.Context, network, sourceTxHash string) (string, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, network, sourceTxHash)
	}
	return "", store.ErrNotFound
}

func (m *mockCache) PutRedemption(ctx context.Context, network, sourceTxHash, redeemTxHash string) error {
	m.puts++
	if m.putFunc != nil {
		return m.putFunc(ctx, network, sourceTxHash, redeemTxHash)
	}
	return nil
}

type mockScanner struct {
	findFunc func(ctx context.Context, query TransferQuery) ([]CandidateEvent, error)
	calls    int
}

func (m *mockScanner) FindCandidates(ctx context.Context, query TransferQuery) ([]CandidateEvent, error) {
	m.calls++
	if m.findFunc != nil {
		return m.findFunc(ctx, query)
	}
	return nil, nil
}

type mockMatcher struct {
	matchFunc func(query TransferQuery, candidate CandidateEvent) bool
	calls     int
}

func (m *mockMatcher) Matches(_ context.Context, query TransferQuery, candidate CandidateEvent) bool {
	m.calls++
	if m.matchFunc != nil {
		return m.matchFunc(query, candidate)
	}
	return false
}

func testQuery() TransferQuery {
	return TransferQuery{
		Network:   chains.NetworkMainnet,
		ChainID:   chains.IDSolana,
		Address:   "9yQ5zU8jDRL8e7qFE6VYeF3UWxVtxDB8pXgkHJvyTdsG",
		Token:     "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:    big.NewInt(5_000_000),
		Timestamp: time.Unix(1_700_000_000, 0),
		TxHash:    "5VERYxJ3mFkQ6vDHqkYqKsGTcFZCN4rtUASM1ZPcuGsjLqkPbKjNs8QYL5dUDj9icqLZ3MoAwnG2D5K7g1hXW6tJ",
		Sequence:  41_213,
	}
}

func newTestLocator(cache ResultCache) *Locator {
	return NewLocator(cache, zap.NewNop())
}

func TestLocateCacheHit(t *testing.T) {
	cache := &mockCache{
		getFunc: func(_ context.Context, network, sourceTxHash string) (string, error) {
			if network != "mainnet" {
				t.Errorf("unexpected network %q", network)
			}
			return "0xredeem", nil
		},
	}
	scanner := &mockScanner{}

	l := newTestLocator(cache)
	l.RegisterRoute(chains.IDSolana, scanner, &mockMatcher{})

	result, err := l.Locate(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if !result.Cached {
		t.Error("expected cached result")
	}
	if result.RedeemTxHash != "0xredeem" {
		t.Errorf("unexpected redeem tx %q", result.RedeemTxHash)
	}
	if scanner.calls != 0 {
		t.Errorf("scanner called %d times on a cache hit", scanner.calls)
	}
	if cache.puts != 0 {
		t.Errorf("cache written %d times on a cache hit", cache.puts)
	}
}

func TestLocateScansOnMissAndCaches(t *testing.T) {
	query := testQuery()
	cache := &mockCache{
		putFunc: func(_ context.Context, network, sourceTxHash, redeemTxHash string) error {
			if network != "mainnet" || sourceTxHash != query.TxHash || redeemTxHash != "redeemsig" {
				t.Errorf("unexpected put %s %s %s", network, sourceTxHash, redeemTxHash)
			}
			return nil
		},
	}
	scanner := &mockScanner{
		findFunc: func(context.Context, TransferQuery) ([]CandidateEvent, error) {
			return []CandidateEvent{
				{TxHash: "othersig", Kind: KindMint, Amount: big.NewInt(1)},
				{TxHash: "redeemsig", Kind: KindMint, Amount: big.NewInt(5_000_000)},
			}, nil
		},
	}
	matcher := &mockMatcher{
		matchFunc: func(_ TransferQuery, candidate CandidateEvent) bool {
			return candidate.TxHash == "redeemsig"
		},
	}

	l := newTestLocator(cache)
	l.RegisterRoute(chains.IDSolana, scanner, matcher)

	result, err := l.Locate(context.Background(), query)
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if result.Cached {
		t.Error("fresh scan must not report cached")
	}
	if result.RedeemTxHash != "redeemsig" {
		t.Errorf("unexpected redeem tx %q", result.RedeemTxHash)
	}
	if cache.puts != 1 {
		t.Errorf("expected one cache write, got %d", cache.puts)
	}
}

func TestLocateRedeemedKindBypassesMatcher(t *testing.T) {
	scanner := &mockScanner{
		findFunc: func(context.Context, TransferQuery) ([]CandidateEvent, error) {
			return []CandidateEvent{{TxHash: "0xexact", Kind: KindRedeemed}}, nil
		},
	}
	matcher := &mockMatcher{
		matchFunc: func(TransferQuery, CandidateEvent) bool {
			t.Error("matcher consulted for a redeemed-event candidate")
			return false
		},
	}

	l := newTestLocator(&mockCache{})
	l.RegisterRoute(chains.IDSolana, scanner, matcher)

	result, err := l.Locate(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if result.RedeemTxHash != "0xexact" {
		t.Errorf("unexpected redeem tx %q", result.RedeemTxHash)
	}
}

func TestLocateNotFoundIsNotCached(t *testing.T) {
	cache := &mockCache{}
	scanner := &mockScanner{
		findFunc: func(context.Context, TransferQuery) ([]CandidateEvent, error) {
			return []CandidateEvent{{TxHash: "nope", Kind: KindMint, Amount: big.NewInt(7)}}, nil
		},
	}

	l := newTestLocator(cache)
	l.RegisterRoute(chains.IDSolana, scanner, &mockMatcher{})

	_, err := l.Locate(context.Background(), testQuery())
	if !errors.Is(err, ErrNotRedeemed) {
		t.Fatalf("expected ErrNotRedeemed, got %v", err)
	}
	if cache.puts != 0 {
		t.Errorf("not-found outcome wrote %d cache entries", cache.puts)
	}

	// A retry scans again instead of being answered negatively.
	_, err = l.Locate(context.Background(), testQuery())
	if !errors.Is(err, ErrNotRedeemed) {
		t.Fatalf("expected ErrNotRedeemed on retry, got %v", err)
	}
	if scanner.calls != 2 {
		t.Errorf("expected 2 scans, got %d", scanner.calls)
	}
}

func TestLocateCacheReadFailureStillScans(t *testing.T) {
	cache := &mockCache{
		getFunc: func(context.Context, string, string) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	scanner := &mockScanner{
		findFunc: func(context.Context, TransferQuery) ([]CandidateEvent, error) {
			return []CandidateEvent{{TxHash: "livesig", Kind: KindRedeemed}}, nil
		},
	}

	l := newTestLocator(cache)
	l.RegisterRoute(chains.IDSolana, scanner, &mockMatcher{})

	result, err := l.Locate(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if result.Cached {
		t.Error("result must not claim to be cached when the cache is down")
	}
	if result.RedeemTxHash != "livesig" {
		t.Errorf("unexpected redeem tx %q", result.RedeemTxHash)
	}
}

func TestLocateCacheWriteFailureStillSucceeds(t *testing.T) {
	cache := &mockCache{
		putFunc: func(context.Context, string, string, string) error {
			return errors.New("disk full")
		},
	}
	scanner := &mockScanner{
		findFunc: func(context.Context, TransferQuery) ([]CandidateEvent, error) {
			return []CandidateEvent{{TxHash: "livesig", Kind: KindRedeemed}}, nil
		},
	}

	l := newTestLocator(cache)
	l.RegisterRoute(chains.IDSolana, scanner, &mockMatcher{})

	result, err := l.Locate(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if result.Cached {
		t.Error("result must not claim to be cached when the write failed")
	}
}

func TestLocateUnknownChain(t *testing.T) {
	scanner := &mockScanner{}
	l := newTestLocator(&mockCache{})
	l.RegisterRoute(chains.IDEthereum, scanner, &mockMatcher{})

	query := testQuery()
	query.ChainID = chains.ID(999)

	_, err := l.Locate(context.Background(), query)
	if !errors.Is(err, ErrUnknownChain) {
		t.Fatalf("expected ErrUnknownChain, got %v", err)
	}
	if scanner.calls != 0 {
		t.Errorf("scanner called %d times for an unrouted chain", scanner.calls)
	}
}

func TestLocateUpstreamFailure(t *testing.T) {
	scanner := &mockScanner{
		findFunc: func(context.Context, TransferQuery) ([]CandidateEvent, error) {
			return nil, errors.New("502 bad gateway")
		},
	}

	l := newTestLocator(&mockCache{})
	l.RegisterRoute(chains.IDSolana, scanner, &mockMatcher{})

	_, err := l.Locate(context.Background(), testQuery())
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if errors.Is(err, ErrNotRedeemed) {
		t.Error("upstream failure must be distinct from not-found")
	}
}

func TestLocateFirstAcceptedCandidateWins(t *testing.T) {
	scanner := &mockScanner{
		findFunc: func(context.Context, TransferQuery) ([]CandidateEvent, error) {
			return []CandidateEvent{
				{TxHash: "first", Kind: KindTransfer, Amount: big.NewInt(10)},
				{TxHash: "second", Kind: KindTransfer, Amount: big.NewInt(10)},
			}, nil
		},
	}
	matcher := &mockMatcher{
		matchFunc: func(TransferQuery, CandidateEvent) bool { return true },
	}

	l := newTestLocator(&mockCache{})
	l.RegisterRoute(chains.IDSolana, scanner, matcher)

	result, err := l.Locate(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if result.RedeemTxHash != "first" {
		t.Errorf("expected first candidate to win, got %q", result.RedeemTxHash)
	}
	if matcher.calls != 1 {
		t.Errorf("matcher consulted %d times, want 1", matcher.calls)
	}
}
