package engine

import (
	"context"
	"errors"
	"testing"

	"bridge-port/internal/domain"
	"bridge-port/internal/ledger"
	"bridge-port/internal/ledger/stub"
)

func TestPrivilegeMintToken(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap(t)

	_, err := env.engine.PrivilegeMintToken(context.Background(), testRoute, "ticket-1", testToken, "cosmos1user", 1000, "")
	if err != nil {
		t.Fatalf("PrivilegeMintToken failed: %v", err)
	}

	last, err := env.dispatcher.Last()
	if err != nil {
		t.Fatalf("Last failed: %v", err)
	}
	if last.Mode != ledger.WithCallback || last.Kind != ledger.CallbackMintToken {
		t.Errorf("Dispatch mode/kind mismatch: %s %s", last.Mode, last.Kind)
	}
	if last.Op.Mint == nil {
		t.Fatal("Expected mint op")
	}
	if last.Op.Mint.Recipient != "cosmos1user" {
		t.Errorf("Recipient mismatch: got %s", last.Op.Mint.Recipient)
	}
	if last.Op.Mint.Amount != "1000" {
		t.Errorf("Amount mismatch: got %s", last.Op.Mint.Amount)
	}
}

func TestPrivilegeMintToken_Replay(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap(t)

	if _, err := env.engine.PrivilegeMintToken(context.Background(), testRoute, "ticket-1", testToken, "cosmos1user", 1000, ""); err != nil {
		t.Fatalf("PrivilegeMintToken failed: %v", err)
	}

	_, err := env.engine.PrivilegeMintToken(context.Background(), testRoute, "ticket-1", testToken, "cosmos1user", 1000, "")
	if !errors.Is(err, ErrTicketAlreadyHandled) {
		t.Errorf("Expected ErrTicketAlreadyHandled, got %v", err)
	}
	if len(env.dispatcher.Dispatches()) != 1 {
		t.Errorf("Replay must not dispatch again")
	}
}

func TestPrivilegeMintToken_Checks(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap(t)

	_, err := env.engine.PrivilegeMintToken(context.Background(), "cosmos1stranger", "ticket-1", testToken, "cosmos1user", 1000, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}

	_, err = env.engine.PrivilegeMintToken(context.Background(), testRoute, "ticket-1", "unknown-token", "cosmos1user", 1000, "")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound, got %v", err)
	}

	// A failed invocation must not consume the ticket id.
	if _, err := env.engine.PrivilegeMintToken(context.Background(), testRoute, "ticket-1", testToken, "cosmos1user", 1000, ""); err != nil {
		t.Fatalf("Ticket id should still be usable: %v", err)
	}
}

func TestPrivilegeMintToken_TransmuteUnsupported(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap(t)

	_, err := env.engine.PrivilegeMintToken(context.Background(), testRoute, "ticket-1", testToken, "cosmos1user", 1000, "uallbtc")
	if !errors.Is(err, ErrUnsupportedTransmute) {
		t.Errorf("Expected ErrUnsupportedTransmute, got %v", err)
	}
}

// configureTransmute whitelists testToken -> uallbtc through pool 7.
func configureTransmute(t *testing.T, env *testEnv) {
	t.Helper()
	st, err := env.engine.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	st.TransmuteSourceTokenID = testToken
	st.TransmuteTargetDenom = "uallbtc"
	st.TransmutePoolID = 7
	if err := env.engine.states.Save(context.Background(), st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func TestPrivilegeMintToken_TransmuteMintsToSelf(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap(t)
	configureTransmute(t, env)

	_, err := env.engine.PrivilegeMintToken(context.Background(), testRoute, "ticket-1", testToken, "cosmos1user", 1000, "uallbtc")
	if err != nil {
		t.Fatalf("PrivilegeMintToken failed: %v", err)
	}

	last, _ := env.dispatcher.Last()
	if last.Op.Mint.Recipient != testSelf {
		t.Errorf("Transmute mint should land on the engine account, got %s", last.Op.Mint.Recipient)
	}
}

// TestTransmuteSaga walks the full mint -> swap -> send chain.
func TestTransmuteSaga(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap(t)
	configureTransmute(t, env)

	ctx := context.Background()
	if _, err := env.engine.PrivilegeMintToken(ctx, testRoute, "ticket-1", testToken, "cosmos1user", 1000, "uallbtc"); err != nil {
		t.Fatalf("PrivilegeMintToken failed: %v", err)
	}

	// Step 1: mint completed, swap dispatched.
	mint, _ := env.dispatcher.Last()
	resp, err := env.engine.OnReply(ctx, stub.CallbackFor(mint, ledger.OutcomeOk, ""))
	if err != nil {
		t.Fatalf("OnReply(mint) failed: %v", err)
	}
	if len(resp.Events) != 0 {
		t.Errorf("Mid-saga step should not emit events, got %v", resp.Events)
	}
	swap, _ := env.dispatcher.Last()
	if swap.Kind != ledger.CallbackSwapToTarget || swap.Op.Swap == nil {
		t.Fatalf("Expected swap dispatch, got %+v", swap)
	}
	if swap.Op.Swap.PoolID != 7 || swap.Op.Swap.OutDenom != "uallbtc" {
		t.Errorf("Swap parameters mismatch: %+v", swap.Op.Swap)
	}

	// Step 2: swap completed, delivery dispatched.
	if _, err := env.engine.OnReply(ctx, stub.CallbackFor(swap, ledger.OutcomeOk, "")); err != nil {
		t.Fatalf("OnReply(swap) failed: %v", err)
	}
	send, _ := env.dispatcher.Last()
	if send.Kind != ledger.CallbackSendAfterSwap || send.Op.BankSend == nil {
		t.Fatalf("Expected bank send dispatch, got %+v", send)
	}
	if send.Op.BankSend.Recipient != "cosmos1user" || send.Op.BankSend.Denom != "uallbtc" {
		t.Errorf("Send parameters mismatch: %+v", send.Op.BankSend)
	}

	// Step 3: delivery completed, saga done.
	resp, err = env.engine.OnReply(ctx, stub.CallbackFor(send, ledger.OutcomeOk, ""))
	if err != nil {
		t.Fatalf("OnReply(send) failed: %v", err)
	}
	ev := findEvent(t, resp, domain.EventTokenMinted)
	if ev.Attr("transmuted_to") != "uallbtc" {
		t.Errorf("Expected transmuted_to attribute, got %v", ev.Attributes)
	}

	if n := len(env.dispatcher.Dispatches()); n != 3 {
		t.Errorf("Expected exactly 3 dispatches for the full saga, got %d", n)
	}
}

func TestTransmuteSaga_SwapFailure(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap(t)
	configureTransmute(t, env)

	ctx := context.Background()
	if _, err := env.engine.PrivilegeMintToken(ctx, testRoute, "ticket-1", testToken, "cosmos1user", 1000, "uallbtc"); err != nil {
		t.Fatalf("PrivilegeMintToken failed: %v", err)
	}
	mint, _ := env.dispatcher.Last()
	if _, err := env.engine.OnReply(ctx, stub.CallbackFor(mint, ledger.OutcomeOk, "")); err != nil {
		t.Fatalf("OnReply(mint) failed: %v", err)
	}
	swap, _ := env.dispatcher.Last()

	resp, err := env.engine.OnReply(ctx, stub.CallbackFor(swap, ledger.OutcomeErr, "pool drained"))
	if err != nil {
		t.Fatalf("OnReply(swap failure) failed: %v", err)
	}

	ev := findEvent(t, resp, domain.EventSwapToTargetFailed)
	if ev.Attr("ticket_id") != "ticket-1" || ev.Attr("amount") != "1000" || ev.Attr("receiver") != "cosmos1user" {
		t.Errorf("Failure event attributes mismatch: %v", ev.Attributes)
	}

	// No delivery is dispatched after a failed swap.
	if n := len(env.dispatcher.Dispatches()); n != 2 {
		t.Errorf("Expected 2 dispatches, got %d", n)
	}
}

func TestMintCallback_PlainMint(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap(t)

	ctx := context.Background()
	if _, err := env.engine.PrivilegeMintToken(ctx, testRoute, "ticket-1", testToken, "cosmos1user", 1000, ""); err != nil {
		t.Fatalf("PrivilegeMintToken failed: %v", err)
	}
	mint, _ := env.dispatcher.Last()

	resp, err := env.engine.OnReply(ctx, stub.CallbackFor(mint, ledger.OutcomeOk, ""))
	if err != nil {
		t.Fatalf("OnReply failed: %v", err)
	}
	ev := findEvent(t, resp, domain.EventTokenMinted)
	if ev.Attr("ticket_id") != "ticket-1" {
		t.Errorf("Event attributes mismatch: %v", ev.Attributes)
	}

	// A failed plain mint is terminal and emits nothing.
	resp, err = env.engine.OnReply(ctx, stub.CallbackFor(mint, ledger.OutcomeErr, "denom missing"))
	if err != nil {
		t.Fatalf("OnReply failed: %v", err)
	}
	if len(resp.Events) != 0 {
		t.Errorf("Expected no events for a failed mint, got %v", resp.Events)
	}
}
