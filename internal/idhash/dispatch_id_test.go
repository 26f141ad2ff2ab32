package idhash

import "testing"

func TestComputeDispatchID_Deterministic(t *testing.T) {
	a := ComputeDispatchID("mint_token", "mint", []byte(`{"ticket_id":"t1"}`))
	b := ComputeDispatchID("mint_token", "mint", []byte(`{"ticket_id":"t1"}`))
	if a != b {
		t.Errorf("Same inputs must produce the same id: %s != %s", a, b)
	}
	if a == "" {
		t.Error("ID must not be empty")
	}
}

func TestComputeDispatchID_Distinct(t *testing.T) {
	base := ComputeDispatchID("mint_token", "mint", []byte("p"))

	if ComputeDispatchID("redeem_burn", "mint", []byte("p")) == base {
		t.Error("Different kinds must produce different ids")
	}
	if ComputeDispatchID("mint_token", "burn", []byte("p")) == base {
		t.Error("Different op types must produce different ids")
	}
	if ComputeDispatchID("mint_token", "mint", []byte("q")) == base {
		t.Error("Different payloads must produce different ids")
	}
}

func TestComputeDispatchID_NilPayload(t *testing.T) {
	a := ComputeDispatchID("create_denom", "create_denom", nil)
	b := ComputeDispatchID("create_denom", "create_denom", []byte{})
	if a != b {
		t.Errorf("Nil and empty payloads must hash identically: %s != %s", a, b)
	}
}
