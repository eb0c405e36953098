package covenant

import (
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Network selects the address-parameter set used for deposit-address
// derivation. Its only effect is on the bech32 human-readable prefix;
// the covenant logic itself is network-independent (spec.md §6).
type Network int

const (
	// NetworkRegtest is the elements regtest development network.
	NetworkRegtest Network = iota

	// NetworkLiquid is the Liquid mainnet.
	NetworkLiquid
)

// hrp returns the bech32 human-readable part for segwit v0 addresses on
// this network.
func (n Network) hrp() string {
	switch n {
	case NetworkLiquid:
		return "ex"
	default:
		return "ert"
	}
}

// Address derives the bech32-encoded segwit v0 address for a P2WSH
// scriptPubKey under the given network's address parameters (spec.md
// §4.3.3). Address derivation fails with MiniscriptCompile if the
// underlying witness script already failed the size check during
// descriptor compilation — Address itself only ever fails on an
// internal bech32 encoding error, since the size limit was already
// enforced when the Descriptor was built.
func (n Network) Address(desc *Descriptor) (string, error) {
	// Witness program for P2WSH is the inner 32-byte hash, i.e. the
	// scriptPubKey's data push, not the OP_0 + pushdata wrapper.
	program := desc.ScriptPubKey[2:]

	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}

	// Witness version 0 is prefixed as the first 5-bit group.
	data := make([]byte, 0, len(converted)+1)
	data = append(data, 0x00)
	data = append(data, converted...)

	return bech32.Encode(n.hrp(), data)
}
