// Package solmint validates Solana addresses as they arrive from
// upstream feeds, before they reach the refresh pipeline.
package solmint

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const addressLen = 32

// Decode decodes a base58 address and checks it is exactly 32 bytes.
func Decode(addr string) ([]byte, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", addr, err)
	}
	if len(raw) != addressLen {
		return nil, fmt.Errorf("address %q: expected %d bytes, got %d", addr, addressLen, len(raw))
	}
	return raw, nil
}

// IsValid reports whether addr is a well-formed Solana address.
func IsValid(addr string) bool {
	_, err := Decode(addr)
	return err == nil
}

// IsOnCurve reports whether the address is a valid ed25519 point.
// Wallet keys are on-curve; program-derived addresses (most pool
// accounts) are intentionally off-curve.
func IsOnCurve(addr string) bool {
	raw, err := Decode(addr)
	if err != nil {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
