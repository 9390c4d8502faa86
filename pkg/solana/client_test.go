package solana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, nil, zap.NewNop())
}

func writeResult(t *testing.T, w http.ResponseWriter, id string, result interface{}) {
	t.Helper()
	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}
	resp := Response{JSONRPC: "2.0", ID: id, Result: raw}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func TestGetSlot(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Method != "getSlot" {
			t.Errorf("unexpected method: %s", req.Method)
		}
		if req.ID == "" {
			t.Error("expected non-empty request id")
		}
		writeResult(t, w, req.ID, 352_280_600)
	})

	slot, err := c.GetSlot(context.Background(), "confirmed")
	if err != nil {
		t.Fatalf("GetSlot() failed: %v", err)
	}
	if slot != 352_280_600 {
		t.Errorf("unexpected slot: %d", slot)
	}
}

func TestGetSignaturesForAddress(t *testing.T) {
	blockTime := int64(1700000100)
	older := int64(1700000000)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Method != "getSignaturesForAddress" {
			t.Errorf("unexpected method: %s", req.Method)
		}
		if got := req.Params[0].(string); got != "WalletAddr111" {
			t.Errorf("unexpected address param: %s", got)
		}
		cfg := req.Params[1].(map[string]interface{})
		if got := cfg["limit"].(float64); got != 1000 {
			t.Errorf("unexpected limit: %v", got)
		}

		writeResult(t, w, req.ID, []SignatureInfo{
			{Signature: "sigNewest", Slot: 101, BlockTime: &blockTime},
			{Signature: "sigOlder", Slot: 100, BlockTime: &older},
		})
	})

	sigs, err := c.GetSignaturesForAddress(context.Background(), "WalletAddr111", &GetSignaturesOpts{Limit: 1000})
	if err != nil {
		t.Fatalf("GetSignaturesForAddress() failed: %v", err)
	}
	if len(sigs) != 2 {
		t.Fatalf("unexpected signature count: %d", len(sigs))
	}
	// Order from the node is newest-first and must be preserved.
	if sigs[0].Signature != "sigNewest" || sigs[1].Signature != "sigOlder" {
		t.Errorf("order not preserved: %s, %s", sigs[0].Signature, sigs[1].Signature)
	}
}

func TestGetTransaction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		cfg := req.Params[1].(map[string]interface{})
		if got := cfg["encoding"].(string); got != "jsonParsed" {
			t.Errorf("unexpected encoding: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"` + req.ID + `","result":{
			"slot": 100,
			"blockTime": 1700000000,
			"transaction": {"signatures":["sigA"],"message":{"instructions":[]}},
			"meta": {
				"err": null,
				"fee": 5000,
				"innerInstructions": [{
					"index": 0,
					"instructions": [{
						"program": "spl-token",
						"programId": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
						"parsed": {"type":"mintTo","info":{"mint":"MintAddr","account":"Acct","mintAuthority":"Auth","amount":"42"}}
					}]
				}]
			}
		}}`))
	})

	tx, err := c.GetTransaction(context.Background(), "sigA")
	if err != nil {
		t.Fatalf("GetTransaction() failed: %v", err)
	}
	if tx.Slot != 100 {
		t.Errorf("unexpected slot: %d", tx.Slot)
	}
	if len(tx.Meta.InnerInstructions) != 1 {
		t.Fatalf("expected one inner instruction group, got %d", len(tx.Meta.InnerInstructions))
	}

	inst := tx.Meta.InnerInstructions[0].Instructions[0]
	var parsed ParsedInstruction
	if err := json.Unmarshal(inst.Parsed, &parsed); err != nil {
		t.Fatalf("failed to decode parsed payload: %v", err)
	}
	if parsed.Type != "mintTo" {
		t.Errorf("unexpected instruction type: %s", parsed.Type)
	}
	var info MintInfo
	if err := json.Unmarshal(parsed.Info, &info); err != nil {
		t.Fatalf("failed to decode mint info: %v", err)
	}
	if info.RawAmount() != "42" {
		t.Errorf("unexpected amount: %s", info.RawAmount())
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":"` + req.ID + `","result":null}`))
	})

	_, err := c.GetTransaction(context.Background(), "sigGone")
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestRPCErrorSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":"1","error":{"code":-32005,"message":"node is behind"}}`))
	})

	_, err := c.GetSlot(context.Background(), "confirmed")
	if err == nil {
		t.Fatal("expected error")
	}
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32005 {
		t.Errorf("unexpected code: %d", rpcErr.Code)
	}
}

func TestHTTPErrorSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream melted", http.StatusBadGateway)
	})

	_, err := c.GetSlot(context.Background(), "confirmed")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestMintInfoCheckedAmount(t *testing.T) {
	raw := []byte(`{"mint":"M","account":"A","mintAuthority":"Auth","tokenAmount":{"amount":"777","decimals":8}}`)
	var info MintInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if info.RawAmount() != "777" {
		t.Errorf("expected checked amount fallback, got %q", info.RawAmount())
	}
}
