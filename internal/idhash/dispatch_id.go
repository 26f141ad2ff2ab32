// Package idhash computes deterministic identifiers for dispatched operations.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeDispatchID computes a deterministic dispatch id using SHA256.
// Formula: SHA256(kind|opType|payload)
// Returns the base58-encoded hash. Determinism lets the host deduplicate
// retried submissions of the same dispatch.
func ComputeDispatchID(kind, opType string, payload []byte) string {
	data := fmt.Sprintf("%s|%s|", kind, opType)

	h := sha256.New()
	h.Write([]byte(data))
	h.Write(payload)
	return base58.Encode(h.Sum(nil))
}
