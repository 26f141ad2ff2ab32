package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testDispatch() Dispatch {
	return Dispatch{
		ID:   "dispatch-1",
		Mode: WithCallback,
		Kind: CallbackMintToken,
		Op: Op{Mint: &MintOp{
			Sender:    "cosmos1bridge",
			Denom:     "factory/cosmos1bridge/WBTC",
			Amount:    "1000",
			Recipient: "cosmos1user",
		}},
	}
}

func TestHTTPClient_Submit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "ledger_submit" {
			t.Errorf("expected method ledger_submit, got %s", req.Method)
		}
		if len(req.Params) != 1 {
			t.Fatalf("expected 1 param, got %d", len(req.Params))
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  true,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	if err := client.Submit(context.Background(), testDispatch()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestHTTPClient_Submit_MalformedOp(t *testing.T) {
	client := NewHTTPClient("http://unreachable.invalid")

	// A dispatch without an op variant is rejected before any HTTP traffic.
	err := client.Submit(context.Background(), Dispatch{ID: "d1"})
	if err == nil {
		t.Fatal("expected malformed op error")
	}
}

func TestHTTPClient_BlockHeight(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "ledger_blockHeight" {
			t.Errorf("expected method ledger_blockHeight, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  uint64(123456),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	height, err := client.BlockHeight(context.Background())
	if err != nil {
		t.Fatalf("BlockHeight: %v", err)
	}
	if height != 123456 {
		t.Errorf("expected height 123456, got %d", height)
	}
}

func TestHTTPClient_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  true,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(2))
	client.retryDelay = 10 * time.Millisecond

	if err := client.Submit(context.Background(), testDispatch()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32000,
				"message": "duplicate dispatch",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(3))
	client.retryDelay = 10 * time.Millisecond

	err := client.Submit(context.Background(), testDispatch())
	if err == nil {
		t.Fatal("expected RPC error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(10))
	client.retryDelay = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := client.Submit(ctx, testDispatch()); err == nil {
		t.Fatal("expected context cancellation error")
	}
}
