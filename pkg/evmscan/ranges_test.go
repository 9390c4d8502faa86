package evmscan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/chainscope/redeemscan/pkg/config"
)

type mockClient struct {
	head        uint64
	headErr     error
	timeFunc    func(number uint64) (uint64, error)
	filterFunc  func(q ethereum.FilterQuery) ([]types.Log, error)
	headerCalls int
	filterCalls int
}

func (m *mockClient) GetLatestBlockNumber(context.Context) (uint64, error) {
	if m.headErr != nil {
		return 0, m.headErr
	}
	return m.head, nil
}

func (m *mockClient) HeaderTimeByNumber(_ context.Context, number uint64) (uint64, error) {
	m.headerCalls++
	return m.timeFunc(number)
}

func (m *mockClient) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	m.filterCalls++
	if m.filterFunc != nil {
		return m.filterFunc(q)
	}
	return nil, nil
}

func scanConfig(initial, growth uint64, windows int) config.ScannerConfig {
	return config.ScannerConfig{
		InitialSpan:  initial,
		GrowthFactor: growth,
		MaxWindows:   windows,
	}
}

// Twelve-second blocks starting at a fixed genesis time.
const genesisTime = 1_600_000_000

func twelveSecondBlocks(number uint64) (uint64, error) {
	return genesisTime + number*12, nil
}

func TestFindRangesWidensAndClamps(t *testing.T) {
	client := &mockClient{head: 10_000, timeFunc: twelveSecondBlocks}
	finder := NewRangeFinder(client, scanConfig(100, 4, 3))

	target := time.Unix(genesisTime+9_990*12, 0)
	ranges, err := finder.FindRanges(context.Background(), target)
	if err != nil {
		t.Fatalf("FindRanges returned error: %v", err)
	}

	want := []BlockRange{
		{From: 9_890, To: 10_000},
		{From: 9_590, To: 10_000},
		{From: 8_390, To: 10_000},
	}
	if len(ranges) != len(want) {
		t.Fatalf("got %d ranges, want %d: %v", len(ranges), len(want), ranges)
	}
	for i, r := range ranges {
		if r != want[i] {
			t.Errorf("range %d = %+v, want %+v", i, r, want[i])
		}
		if r.From > r.To || r.To > client.head {
			t.Errorf("range %d violates From <= To <= head: %+v", i, r)
		}
	}
}

func TestFindRangesPivotPrecision(t *testing.T) {
	client := &mockClient{
		head:     100,
		timeFunc: func(number uint64) (uint64, error) { return 1_000 + number*10, nil },
	}
	finder := NewRangeFinder(client, scanConfig(1, 2, 1))

	// Between blocks 45 (1450) and 46 (1460); the first not-before block is 46.
	ranges, err := finder.FindRanges(context.Background(), time.Unix(1_455, 0))
	if err != nil {
		t.Fatalf("FindRanges returned error: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1", len(ranges))
	}
	if ranges[0] != (BlockRange{From: 45, To: 47}) {
		t.Errorf("range = %+v, want {45 47}", ranges[0])
	}
}

func TestFindRangesProbeBudget(t *testing.T) {
	head := uint64(1) << 20
	client := &mockClient{
		head:     head,
		timeFunc: func(number uint64) (uint64, error) { return number, nil },
	}
	finder := NewRangeFinder(client, scanConfig(10, 2, 2))

	if _, err := finder.FindRanges(context.Background(), time.Unix(int64(head/3), 0)); err != nil {
		t.Fatalf("FindRanges returned error: %v", err)
	}
	// Bisection over 2^20 blocks takes at most 21 header reads.
	if client.headerCalls > 21 {
		t.Errorf("bisection used %d header reads, want <= 21", client.headerCalls)
	}
}

func TestFindRangesStopsWhenChainCovered(t *testing.T) {
	client := &mockClient{head: 50, timeFunc: twelveSecondBlocks}
	finder := NewRangeFinder(client, scanConfig(100, 4, 4))

	ranges, err := finder.FindRanges(context.Background(), time.Unix(genesisTime+300, 0))
	if err != nil {
		t.Fatalf("FindRanges returned error: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1 once the chain is covered: %v", len(ranges), ranges)
	}
	if ranges[0] != (BlockRange{From: 0, To: 50}) {
		t.Errorf("range = %+v, want {0 50}", ranges[0])
	}
}

func TestFindRangesHeadFailure(t *testing.T) {
	client := &mockClient{headErr: errors.New("connection reset")}
	finder := NewRangeFinder(client, scanConfig(10, 2, 2))

	if _, err := finder.FindRanges(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when the head lookup fails")
	}
}
