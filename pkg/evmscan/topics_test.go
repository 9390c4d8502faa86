package evmscan

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestTransferTopicMatchesSignature(t *testing.T) {
	want := crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	if TransferTopic != want {
		t.Errorf("TransferTopic = %s, want %s", TransferTopic.Hex(), want.Hex())
	}
}

func TestRedeemedTopicDistinct(t *testing.T) {
	if TransferRedeemedTopic == (common.Hash{}) {
		t.Error("TransferRedeemedTopic is zero")
	}
	if TransferRedeemedTopic == TransferTopic {
		t.Error("TransferRedeemedTopic collides with TransferTopic")
	}
}

func TestSequenceTopic(t *testing.T) {
	got := SequenceTopic(66051)
	want := common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000010203")
	if got != want {
		t.Errorf("SequenceTopic(66051) = %s, want %s", got.Hex(), want.Hex())
	}
}

func TestAddressTopic(t *testing.T) {
	addr := common.HexToAddress("0x4a75b1499e259efa61c9d8670a47a726e1d0a499")
	got := AddressTopic(addr)
	want := common.HexToHash("0x0000000000000000000000004a75b1499e259efa61c9d8670a47a726e1d0a499")
	if got != want {
		t.Errorf("AddressTopic = %s, want %s", got.Hex(), want.Hex())
	}
	if common.BytesToAddress(got.Bytes()) != addr {
		t.Error("AddressTopic did not round-trip the address")
	}
}

func TestEmitterChainTopic(t *testing.T) {
	got := EmitterChainTopic(23)
	want := common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000017")
	if got != want {
		t.Errorf("EmitterChainTopic(23) = %s, want %s", got.Hex(), want.Hex())
	}
}
