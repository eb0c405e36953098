package elementstx

import (
	"bytes"
	"fmt"
)

// SerializeOutput is the canonical output serializer (spec.md §4.1, "C1").
// It encodes a single transaction output in the order
// asset ∥ value ∥ nonce ∥ script_pubkey, where each confidential field is
// tagged:
//
//   - explicit asset   -> 0x01 ∥ 32B
//   - confidential asset -> the 33-byte commitment as-is (prefix-tagged)
//   - explicit value   -> 0x01 ∥ 8B big-endian
//   - confidential value -> the 33-byte commitment as-is
//   - null nonce       -> 0x00
//   - pubkey nonce     -> the 33-byte compressed pubkey as-is (0x02/0x03 prefix)
//
// The script is prefixed with its compact-size length. This function is
// side-effect-free; its output is the exact byte string the
// outputs_pref covenant fragment embeds as a literal, so every caller
// that needs the committed-output bytes — descriptor construction,
// assembly, and size checking — must go through this one function.
func SerializeOutput(out *TxOut) ([]byte, error) {
	var buf bytes.Buffer

	if id, ok := out.Asset.Explicit(); ok {
		buf.WriteByte(0x01)
		buf.Write(id[:])
	} else {
		if len(out.Asset.commitment) != assetCommitmentSize {
			return nil, fmt.Errorf("malformed asset commitment")
		}
		buf.Write(out.Asset.commitment)
	}

	if v, ok := out.Value.Explicit(); ok {
		buf.WriteByte(0x01)
		var valBytes [8]byte
		for i := 0; i < 8; i++ {
			valBytes[i] = byte(v >> uint(8*(7-i)))
		}
		buf.Write(valBytes[:])
	} else {
		if len(out.Value.commitment) != valueCommitmentSize {
			return nil, fmt.Errorf("malformed value commitment")
		}
		buf.Write(out.Value.commitment)
	}

	if out.Nonce.IsNull() {
		buf.WriteByte(0x00)
	} else {
		pub, _ := out.Nonce.PubKey()
		buf.Write(pub)
	}

	if err := writeVarBytes(&buf, out.PkScript); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// SerializedLen returns len(SerializeOutput(out)) without allocating the
// script-pubkey copy twice; used by the §3 size check.
func SerializedLen(out *TxOut) (int, error) {
	b, err := SerializeOutput(out)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func deserializeOutput(r *bytes.Reader) (*TxOut, error) {
	out := &TxOut{}

	assetTag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read asset tag: %w", err)
	}
	switch assetTag {
	case 0x01:
		var raw [32]byte
		if _, err := r.Read(raw[:]); err != nil {
			return nil, fmt.Errorf("read explicit asset: %w", err)
		}
		var id [32]byte
		copy(id[:], raw[:])
		out.Asset = ExplicitAsset(id)
	case 0x0a, 0x0b:
		commitment := make([]byte, assetCommitmentSize)
		commitment[0] = assetTag
		if _, err := r.Read(commitment[1:]); err != nil {
			return nil, fmt.Errorf("read confidential asset: %w", err)
		}
		a, err := ConfidentialAsset(commitment)
		if err != nil {
			return nil, err
		}
		out.Asset = a
	default:
		return nil, fmt.Errorf("unknown asset tag 0x%02x", assetTag)
	}

	valueTag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read value tag: %w", err)
	}
	switch valueTag {
	case 0x01:
		var valBytes [8]byte
		if _, err := r.Read(valBytes[:]); err != nil {
			return nil, fmt.Errorf("read explicit value: %w", err)
		}
		var v uint64
		for i := 0; i < 8; i++ {
			v = v<<8 | uint64(valBytes[i])
		}
		out.Value = ExplicitValue(v)
	case 0x08, 0x09:
		commitment := make([]byte, valueCommitmentSize)
		commitment[0] = valueTag
		if _, err := r.Read(commitment[1:]); err != nil {
			return nil, fmt.Errorf("read confidential value: %w", err)
		}
		v, err := ConfidentialValue(commitment)
		if err != nil {
			return nil, err
		}
		out.Value = v
	default:
		return nil, fmt.Errorf("unknown value tag 0x%02x", valueTag)
	}

	nonceTag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read nonce tag: %w", err)
	}
	switch nonceTag {
	case 0x00:
		out.Nonce = NullNonce()
	case 0x02, 0x03:
		pubkey := make([]byte, nonceCommitmentSize)
		pubkey[0] = nonceTag
		if _, err := r.Read(pubkey[1:]); err != nil {
			return nil, fmt.Errorf("read nonce pubkey: %w", err)
		}
		n, err := NonceFromPubKey(pubkey)
		if err != nil {
			return nil, err
		}
		out.Nonce = n
	default:
		return nil, fmt.Errorf("unknown nonce tag 0x%02x", nonceTag)
	}

	script, err := readVarBytes(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	out.PkScript = script

	return out, nil
}
