package store

import "testing"

func TestNormalizeTxHash(t *testing.T) {
	if got := NormalizeTxHash("0xABCDef01"); got != "0xabcdef01" {
		t.Errorf("hex hash should lowercase, got %s", got)
	}
	if got := NormalizeTxHash("0Xff00"); got != "0xff00" {
		t.Errorf("0X prefix should lowercase, got %s", got)
	}
	// Base58 solana signatures are case-sensitive.
	sig := "5VERvJCFmG7wpqxvNcb8o3THv1jTqBSRRkTHjCW5SEPsPPVb"
	if got := NormalizeTxHash(sig); got != sig {
		t.Errorf("base58 signature must pass through, got %s", got)
	}
}

func TestKeyFormats(t *testing.T) {
	key := RedemptionKey("mainnet", "0xDEAD")
	if key != "redemption:mainnet:0xdead" {
		t.Errorf("unexpected redemption key: %s", key)
	}
	key = TokenMetaKey("polygon", "0xAbC")
	if key != "token:polygon:0xabc" {
		t.Errorf("unexpected token meta key: %s", key)
	}
}
