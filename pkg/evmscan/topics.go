package evmscan

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event topics the redemption scanner filters on.
var (
	// TransferTopic is the ERC-20 Transfer(address,address,uint256) signature hash.
	TransferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

	// TransferRedeemedTopic is emitted by the token bridge when a transfer is
	// redeemed on the destination chain. The emitter chain, emitter address and
	// sequence number are the indexed arguments, in that order.
	TransferRedeemedTopic = crypto.Keccak256Hash([]byte("TransferRedeemed(uint16,bytes32,uint64)"))
)

// SequenceTopic encodes a bridge sequence number as an indexed event argument
func SequenceTopic(sequence uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(sequence))
}

// AddressTopic encodes an EVM address as an indexed event argument
func AddressTopic(address common.Address) common.Hash {
	return common.BytesToHash(address.Bytes())
}

// EmitterChainTopic encodes a bridge chain id as an indexed event argument
func EmitterChainTopic(chainID uint16) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(uint64(chainID)))
}
