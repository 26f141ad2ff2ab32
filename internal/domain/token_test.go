package domain

import "testing"

func TestCanonicalTokenID(t *testing.T) {
	// Plain ids pass through untouched.
	id, rewritten := CanonicalTokenID("Bitcoin-runes-WBTC")
	if rewritten {
		t.Error("Expected no rewrite for plain id")
	}
	if id != "Bitcoin-runes-WBTC" {
		t.Errorf("ID mismatch: got %s", id)
	}

	// The reserved separator is replaced everywhere it appears.
	id, rewritten = CanonicalTokenID("Bitcoin-runes-HOPE•YOU•GET•RICH")
	if !rewritten {
		t.Error("Expected rewrite for id with reserved separator")
	}
	if id != "Bitcoin-runes-HOPE_YOU_GET_RICH" {
		t.Errorf("ID mismatch: got %s", id)
	}
}

func TestSubdenomForToken(t *testing.T) {
	if got := SubdenomForToken("Bitcoin-runes-WBTC"); got != "WBTC" {
		t.Errorf("Subdenom mismatch: got %s, want WBTC", got)
	}
	// An id without namespace segments is its own subdenom.
	if got := SubdenomForToken("WBTC"); got != "WBTC" {
		t.Errorf("Subdenom mismatch: got %s, want WBTC", got)
	}
}

func TestFactoryDenom(t *testing.T) {
	got := FactoryDenom("bridge1abc", "WBTC")
	if got != "factory/bridge1abc/WBTC" {
		t.Errorf("Denom mismatch: got %s", got)
	}
}

func TestToggleAction_State(t *testing.T) {
	if ToggleActivate.State() != ChainStateActive {
		t.Error("activate should transition to active")
	}
	if ToggleDeactivate.State() != ChainStateInactive {
		t.Error("deactivate should transition to inactive")
	}
}
