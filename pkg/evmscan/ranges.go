package evmscan

import (
	"context"
	"fmt"
	"time"

	"github.com/chainscope/redeemscan/pkg/config"
)

// BlockRange is an inclusive span of block heights, the unit of one
// filtered log query.
type BlockRange struct {
	From uint64
	To   uint64
}

// RangeFinder derives the scan windows for a target timestamp. It bisects
// block headers to find the block closest to the target, then emits windows
// around it that widen geometrically, so clock skew between the source
// chain's reported time and destination block times is absorbed at a bounded
// RPC cost.
type RangeFinder struct {
	client ChainClient
	cfg    config.ScannerConfig
}

// NewRangeFinder creates a range finder over the given chain client.
func NewRangeFinder(client ChainClient, cfg config.ScannerConfig) *RangeFinder {
	return &RangeFinder{client: client, cfg: cfg}
}

// FindRanges returns the scan windows for the target time, narrowest first.
// Every window satisfies From <= To <= head. The sequence is finite: it stops
// at MaxWindows or as soon as a window covers the whole chain.
func (f *RangeFinder) FindRanges(ctx context.Context, target time.Time) ([]BlockRange, error) {
	head, err := f.client.GetLatestBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chain head: %w", err)
	}

	pivot, err := f.findPivot(ctx, head, uint64(target.Unix()))
	if err != nil {
		return nil, err
	}

	ranges := make([]BlockRange, 0, f.cfg.MaxWindows)
	half := f.cfg.InitialSpan
	for i := 0; i < f.cfg.MaxWindows; i++ {
		r := BlockRange{From: saturatingSub(pivot, half), To: min(pivot+half, head)}
		if len(ranges) > 0 && r == ranges[len(ranges)-1] {
			// The previous window already covers everything a wider one would.
			break
		}
		ranges = append(ranges, r)
		if half >= head {
			half = head
		} else {
			half *= f.cfg.GrowthFactor
		}
	}
	return ranges, nil
}

// findPivot bisects block headers for the earliest block whose timestamp is
// not before the target. Block times are monotonic, so this lands within one
// block of the closest header in O(log head) probes regardless of the chain's
// variable block interval.
func (f *RangeFinder) findPivot(ctx context.Context, head uint64, target uint64) (uint64, error) {
	lo, hi := uint64(0), head
	for lo < hi {
		mid := lo + (hi-lo)/2
		blockTime, err := f.client.HeaderTimeByNumber(ctx, mid)
		if err != nil {
			return 0, fmt.Errorf("failed to read header %d: %w", mid, err)
		}
		if blockTime < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
