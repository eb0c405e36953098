// Package elementstx defines the semantic and wire representation of an
// Elements/Liquid-family transaction: confidential asset/value/nonce
// fields, and the TxIn/TxOut/Transaction triple the covenant operates on.
//
// This package knows nothing about scripts or covenants; it is the leaf
// data-model layer other packages build on, in the same spirit as the
// teacher's wire.MsgTx sitting underneath lnwallet's script construction.
package elementstx

import (
	"fmt"

	"github.com/lightninglabs/elopt/asset"
)

// nonceCommitmentSize is the length of a blinding-pubkey nonce: a single
// parity-tag byte plus a 32-byte x-coordinate.
const nonceCommitmentSize = 33

// assetCommitmentSize is the length of a blinded asset generator.
const assetCommitmentSize = 33

// valueCommitmentSize is the length of a Pedersen value commitment.
const valueCommitmentSize = 33

// Asset is the confidential asset field of a transaction output: either
// an explicit 32-byte asset ID, or an opaque 33-byte blinded commitment.
type Asset struct {
	explicit   *asset.ID
	commitment []byte
}

// ExplicitAsset builds an explicit Asset field.
func ExplicitAsset(id asset.ID) Asset {
	return Asset{explicit: &id}
}

// ConfidentialAsset builds a blinded Asset field from a raw commitment.
func ConfidentialAsset(commitment []byte) (Asset, error) {
	if len(commitment) != assetCommitmentSize {
		return Asset{}, fmt.Errorf("asset commitment must be %d bytes", assetCommitmentSize)
	}
	c := make([]byte, assetCommitmentSize)
	copy(c, commitment)
	return Asset{commitment: c}, nil
}

// IsExplicit reports whether the field carries an explicit asset ID.
func (a Asset) IsExplicit() bool { return a.explicit != nil }

// Explicit returns the explicit asset ID and true, or the zero ID and
// false if the field is blinded.
func (a Asset) Explicit() (asset.ID, bool) {
	if a.explicit == nil {
		return asset.ID{}, false
	}
	return *a.explicit, true
}

// Equal reports structural equality, used by the assembler to locate a
// covenant-mandated output inside a funded transaction (spec.md §4.4
// step 4: "locate each burn/payment output by structural equality").
func (a Asset) Equal(o Asset) bool {
	if a.IsExplicit() != o.IsExplicit() {
		return false
	}
	if a.IsExplicit() {
		return *a.explicit == *o.explicit
	}
	return string(a.commitment) == string(o.commitment)
}

// Value is the confidential value field of a transaction output: either
// an explicit 64-bit unsigned amount, or an opaque 33-byte commitment.
type Value struct {
	explicit   *uint64
	commitment []byte
}

// ExplicitValue builds an explicit Value field.
func ExplicitValue(v uint64) Value {
	return Value{explicit: &v}
}

// ConfidentialValue builds a blinded Value field from a raw commitment.
func ConfidentialValue(commitment []byte) (Value, error) {
	if len(commitment) != valueCommitmentSize {
		return Value{}, fmt.Errorf("value commitment must be %d bytes", valueCommitmentSize)
	}
	c := make([]byte, valueCommitmentSize)
	copy(c, commitment)
	return Value{commitment: c}, nil
}

// IsExplicit reports whether the field carries an explicit amount.
func (v Value) IsExplicit() bool { return v.explicit != nil }

// Explicit returns the explicit amount and true, or 0 and false if the
// field is blinded.
func (v Value) Explicit() (uint64, bool) {
	if v.explicit == nil {
		return 0, false
	}
	return *v.explicit, true
}

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	if v.IsExplicit() != o.IsExplicit() {
		return false
	}
	if v.IsExplicit() {
		return *v.explicit == *o.explicit
	}
	return string(v.commitment) == string(o.commitment)
}

// Nonce is the confidential nonce field of a transaction output: either
// null, or a 33-byte blinding pubkey (compressed, 0x02/0x03 prefix).
type Nonce struct {
	null   bool
	pubkey []byte
}

// NullNonce builds a null nonce.
func NullNonce() Nonce {
	return Nonce{null: true}
}

// NonceFromPubKey builds a blinding-pubkey nonce from a 33-byte
// compressed public key.
func NonceFromPubKey(pubkey []byte) (Nonce, error) {
	if len(pubkey) != nonceCommitmentSize {
		return Nonce{}, fmt.Errorf("nonce pubkey must be %d bytes", nonceCommitmentSize)
	}
	if pubkey[0] != 0x02 && pubkey[0] != 0x03 {
		return Nonce{}, fmt.Errorf("nonce pubkey must have a 0x02/0x03 prefix")
	}
	p := make([]byte, nonceCommitmentSize)
	copy(p, pubkey)
	return Nonce{pubkey: p}, nil
}

// IsNull reports whether the nonce is null.
func (n Nonce) IsNull() bool { return n.null }

// PubKey returns the 33-byte blinding pubkey and true, or nil and false
// if the nonce is null.
func (n Nonce) PubKey() ([]byte, bool) {
	if n.null {
		return nil, false
	}
	return n.pubkey, true
}

// Equal reports structural equality.
func (n Nonce) Equal(o Nonce) bool {
	if n.null != o.null {
		return false
	}
	if n.null {
		return true
	}
	return string(n.pubkey) == string(o.pubkey)
}
