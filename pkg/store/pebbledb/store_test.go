package pebbledb

import (
	"context"
	"errors"
	"testing"

	"github.com/chainscope/redeemscan/pkg/store"
)

func setupStore(t *testing.T) (context.Context, *Store) {
	t.Helper()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})

	return context.Background(), s
}

func TestRedemptionRoundTrip(t *testing.T) {
	ctx, s := setupStore(t)

	_, err := s.GetRedemption(ctx, "mainnet", "0xSRC")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := s.PutRedemption(ctx, "mainnet", "0xSRC", "0xDEST"); err != nil {
		t.Fatalf("PutRedemption() failed: %v", err)
	}

	got, err := s.GetRedemption(ctx, "mainnet", "0xSRC")
	if err != nil {
		t.Fatalf("GetRedemption() failed: %v", err)
	}
	if got != "0xDEST" {
		t.Errorf("unexpected redeem tx hash: %s", got)
	}

	// Hex keys are case-insensitive.
	got, err = s.GetRedemption(ctx, "mainnet", "0xsrc")
	if err != nil {
		t.Fatalf("GetRedemption() with lowercase key failed: %v", err)
	}
	if got != "0xDEST" {
		t.Errorf("unexpected redeem tx hash via lowercase key: %s", got)
	}

	// Rewriting the same fact is a no-op.
	if err := s.PutRedemption(ctx, "mainnet", "0xSRC", "0xDEST"); err != nil {
		t.Fatalf("idempotent PutRedemption() failed: %v", err)
	}

	// Networks are separate namespaces.
	if _, err := s.GetRedemption(ctx, "testnet", "0xSRC"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on other network, got %v", err)
	}
}

func TestTokenMetaRoundTrip(t *testing.T) {
	ctx, s := setupStore(t)

	_, err := s.GetTokenMeta(ctx, "polygon", "0xToken")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	meta := store.TokenMeta{Symbol: "WSOL", Decimals: 9}
	if err := s.PutTokenMeta(ctx, "polygon", "0xToken", meta); err != nil {
		t.Fatalf("PutTokenMeta() failed: %v", err)
	}

	got, err := s.GetTokenMeta(ctx, "polygon", "0xToken")
	if err != nil {
		t.Fatalf("GetTokenMeta() failed: %v", err)
	}
	if got != meta {
		t.Errorf("token meta mismatch: got %+v want %+v", got, meta)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := New(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.PutRedemption(ctx, "mainnet", "0xAA", "0xBB"); err != nil {
		t.Fatalf("PutRedemption() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	s, err = New(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	got, err := s.GetRedemption(ctx, "mainnet", "0xAA")
	if err != nil {
		t.Fatalf("GetRedemption() after reopen failed: %v", err)
	}
	if got != "0xBB" {
		t.Errorf("unexpected redeem tx hash after reopen: %s", got)
	}
}
