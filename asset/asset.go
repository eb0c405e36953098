// Package asset defines the asset identifier and per-contract asset
// parameters used throughout the covenant construction. It has no
// dependency on transaction or script types: an asset is just an opaque
// 32-byte handle plus the two quantities the contract cares about.
package asset

import (
	"encoding/hex"
	"fmt"
)

// IDSize is the length in bytes of an asset identifier.
const IDSize = 32

// ID is a 32-byte opaque handle identifying an asset class on the chain.
type ID [IDSize]byte

// IDFromHex parses a reversed-byte-order hex string into an ID, following
// the same display convention the chain uses for txids: wire order is the
// reverse of the conventional display order.
func IDFromHex(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid asset id hex: %w", err)
	}
	if len(b) != IDSize {
		return id, fmt.Errorf("asset id must be %d bytes, got %d", IDSize, len(b))
	}
	for i := 0; i < IDSize; i++ {
		id[i] = b[IDSize-1-i]
	}
	return id, nil
}

// String renders the ID in the conventional reversed-byte-order hex
// display form.
func (id ID) String() string {
	rev := make([]byte, IDSize)
	for i := 0; i < IDSize; i++ {
		rev[i] = id[IDSize-1-i]
	}
	return hex.EncodeToString(rev)
}

// IsZero reports whether the ID is the all-zero value, used to detect an
// unset asset field in configuration.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Params describes one side of the contract's asset pair: the asset
// itself, the companion token that tracks ownership of a claim on it, and
// the quantity in base units.
//
// Locked params describe the collateral: asset is the collateral asset,
// companion is the beneficiary (writer) token, value is the collateral
// amount. Claim params describe the strike side: asset is the strike
// asset, companion is the option (buyer) token, value is the strike
// amount.
type Params struct {
	Asset     ID
	Companion ID
	Value     uint64
}

// New builds a Params triple.
func New(asset, companion ID, value uint64) Params {
	return Params{Asset: asset, Companion: companion, Value: value}
}
