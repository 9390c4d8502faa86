//go:build ignore

// Manual smoke test for the redemption lookup API.
//
// PREREQUISITES:
// 1. The API server is running (go run cmd/api-server/main.go -config config.yaml)
//
// Usage:
//
//	go run scripts/lookup-redemption.go -addr http://localhost:8080 \
//	  -chain solana -address 0x68cc... -token 0x1d14... -amount 5000000000 \
//	  -timestamp 1700000000 -tx-hash 5jQ44... -sequence 91
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "API server base URL")
	chain := flag.String("chain", "solana", "source chain name")
	address := flag.String("address", "", "destination recipient address")
	token := flag.String("token", "", "destination token address or mint")
	amount := flag.String("amount", "", "bridge-normalized transfer amount")
	timestamp := flag.Int64("timestamp", 0, "source transfer time (unix seconds)")
	txHash := flag.String("tx-hash", "", "source transaction hash")
	sequence := flag.Uint64("sequence", 0, "emitter sequence, if known")
	flag.Parse()

	q := url.Values{}
	q.Set("chain", *chain)
	q.Set("address", *address)
	q.Set("token", *token)
	q.Set("amount", *amount)
	q.Set("timestamp", fmt.Sprintf("%d", *timestamp))
	q.Set("tx_hash", *txHash)
	if *sequence > 0 {
		q.Set("sequence", fmt.Sprintf("%d", *sequence))
	}

	lookupURL := fmt.Sprintf("%s/api/v1/redemptions/lookup?%s", *addr, q.Encode())
	fmt.Printf("GET %s\n", lookupURL)

	client := &http.Client{Timeout: 2 * time.Minute}
	start := time.Now()
	resp, err := client.Get(lookupURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d elapsed=%s\n", resp.StatusCode, time.Since(start).Round(time.Millisecond))

	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}
