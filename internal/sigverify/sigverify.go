// Package sigverify verifies governance directive signatures.
package sigverify

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Verification errors.
var (
	// ErrInvalidChainKey is returned when a chain key is not a valid ed25519
	// public key.
	ErrInvalidChainKey = errors.New("invalid chain key")

	// ErrBadSignature is returned when a signature does not verify.
	ErrBadSignature = errors.New("signature verification failed")
)

// ValidateChainKey checks that key is a well-formed ed25519 public key whose
// bytes decode to a point on the curve.
func ValidateChainKey(key []byte) error {
	if len(key) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidChainKey, ed25519.PublicKeySize, len(key))
	}
	if _, err := new(edwards25519.Point).SetBytes(key); err != nil {
		return fmt.Errorf("%w: not a curve point", ErrInvalidChainKey)
	}
	return nil
}

// ParseChainKey decodes a base58-encoded chain key and validates it.
func ParseChainKey(encoded string) ([]byte, error) {
	key, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode chain key: %w", err)
	}
	if err := ValidateChainKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Verify checks sig over msg with the given chain key.
func Verify(chainKey, msg, sig []byte) error {
	if err := ValidateChainKey(chainKey); err != nil {
		return err
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: expected %d signature bytes, got %d", ErrBadSignature, ed25519.SignatureSize, len(sig))
	}
	if !ed25519.Verify(ed25519.PublicKey(chainKey), msg, sig) {
		return ErrBadSignature
	}
	return nil
}
