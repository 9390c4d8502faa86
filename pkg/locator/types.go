package locator

import (
	"errors"
	"math/big"
	"time"

	"github.com/chainscope/redeemscan/pkg/chains"
)

var (
	// ErrNotRedeemed means scanning exhausted every candidate without finding
	// the redemption. It is a valid terminal state, not an infrastructure
	// failure, and is never cached: a later retry may succeed once the
	// redemption is mined.
	ErrNotRedeemed = errors.New("redemption not found")

	// ErrUnknownChain means the query names a source chain no scanner is
	// registered for. Rejected before any RPC is issued.
	ErrUnknownChain = errors.New("unsupported source chain")

	// ErrUpstream means a chain RPC call failed mid-scan. Not retried
	// internally; callers re-issue the request.
	ErrUpstream = errors.New("upstream rpc unavailable")
)

// TransferQuery describes one bridge transfer whose redemption is sought.
// Amount must be non-nil; both it and the tolerances are in base units.
type TransferQuery struct {
	Network chains.Network
	// ChainID is the bridge id of the source chain and selects the scanner.
	ChainID chains.ID
	// Address is the wallet on both ends; bridge transfers are wallet-to-self.
	Address string
	// Token identifies the asset in source-chain denomination, as supplied
	// by the caller.
	Token     string
	Amount    *big.Int
	Timestamp time.Time
	// TxHash is the source transaction hash and the memoization key.
	TxHash   string
	Sequence uint64
}

// CandidateKind classifies how a candidate event credits the destination wallet.
type CandidateKind string

const (
	// KindMint is a wrapped-asset mint instruction on an account-indexed chain.
	KindMint CandidateKind = "mint"
	// KindTransfer is an ERC-20 transfer log collected as a fallback candidate.
	KindTransfer CandidateKind = "transfer"
	// KindRedeemed is a bridge redemption event with the queried sequence
	// number. It identifies the redemption exactly and bypasses matching.
	KindRedeemed CandidateKind = "redeemed"
)

// CandidateEvent is one destination-chain event a scanner proposes as the
// possible redemption of a transfer.
type CandidateEvent struct {
	TxHash    string
	BlockTime int64
	Kind      CandidateKind
	// Token is the asset credited: the mint address on Solana, the ERC-20
	// contract on EVM chains.
	Token  string
	Amount *big.Int
	// Program is the mint authority or emitting contract.
	Program string
	// Decimals is the destination token precision when the scanner knows it,
	// zero otherwise.
	Decimals uint8
}

// Result is the outcome of a successful lookup. Cached reports whether the
// redemption hash was served from the store rather than a live scan.
type Result struct {
	SourceTxHash string
	RedeemTxHash string
	Cached       bool
}
