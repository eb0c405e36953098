package finalize

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightninglabs/elopt/covenant"
	"github.com/lightninglabs/elopt/elementstx"
)

// SighashAll is the only sighash type this core ever computes: every
// operation signs the whole transaction (spec.md §4.5 step 3).
const SighashAll uint32 = 1

// ComputeSighash computes the segwit v0 style signature digest for
// spending input inputIndex of tx, given the script code and the
// confidential value field of the output being spent (spec.md §4.5
// step 3). It follows the teacher's segwit digest shape
// (lnwallet/script_utils.go's calcWitnessSignatureHash): a double-SHA256
// over the version, hashPrevouts, hashSequence, the spent outpoint, the
// script code, the spent value, the input's sequence, hashOutputs, the
// locktime, and the sighash type. Integer fields are little-endian; the
// spent value uses the output serializer's tagged big-endian form.
func ComputeSighash(tx *elementstx.Transaction, inputIndex int, scriptCode []byte, value elementstx.Value, sighashType uint32) ([32]byte, error) {
	hashPrevouts, err := hashPrevOuts(tx)
	if err != nil {
		return [32]byte{}, err
	}
	hashSequence, err := hashSequences(tx)
	if err != nil {
		return [32]byte{}, err
	}
	hashOutputs, err := hashOutputs(tx)
	if err != nil {
		return [32]byte{}, err
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, tx.Version)
	buf.Write(hashPrevouts[:])
	buf.Write(hashSequence[:])

	in := tx.TxIn[inputIndex]
	buf.Write(in.PreviousOutPoint.Hash[:])
	binary.Write(&buf, binary.LittleEndian, in.PreviousOutPoint.Index)

	if err := writeVarBytes(&buf, scriptCode); err != nil {
		return [32]byte{}, err
	}

	valBytes, err := serializeValue(value)
	if err != nil {
		return [32]byte{}, err
	}
	buf.Write(valBytes)

	binary.Write(&buf, binary.LittleEndian, in.Sequence)
	buf.Write(hashOutputs[:])
	binary.Write(&buf, binary.LittleEndian, tx.LockTime)
	binary.Write(&buf, binary.LittleEndian, sighashType)

	return chainhash.DoubleHashH(buf.Bytes()), nil
}

func hashPrevOuts(tx *elementstx.Transaction) ([32]byte, error) {
	var buf bytes.Buffer
	for _, in := range tx.TxIn {
		buf.Write(in.PreviousOutPoint.Hash[:])
		if err := binary.Write(&buf, binary.LittleEndian, in.PreviousOutPoint.Index); err != nil {
			return [32]byte{}, err
		}
	}
	return chainhash.DoubleHashH(buf.Bytes()), nil
}

func hashSequences(tx *elementstx.Transaction) ([32]byte, error) {
	var buf bytes.Buffer
	for _, in := range tx.TxIn {
		if err := binary.Write(&buf, binary.LittleEndian, in.Sequence); err != nil {
			return [32]byte{}, err
		}
	}
	return chainhash.DoubleHashH(buf.Bytes()), nil
}

func hashOutputs(tx *elementstx.Transaction) ([32]byte, error) {
	var buf bytes.Buffer
	for _, out := range tx.TxOut {
		b, err := covenant.SerializeOutput(out)
		if err != nil {
			return [32]byte{}, err
		}
		buf.Write(b)
	}
	return chainhash.DoubleHashH(buf.Bytes()), nil
}

// serializeValue encodes a confidential value field the same way the
// output serializer does, so the sighash preimage commits to the spent
// output's value under the identical tagging rule (spec.md §4.1).
func serializeValue(v elementstx.Value) ([]byte, error) {
	if amt, ok := v.Explicit(); ok {
		b := make([]byte, 9)
		b[0] = 0x01
		binary.BigEndian.PutUint64(b[1:], amt)
		return b, nil
	}
	return nil, errBlindedSpendValue()
}

func writeVarBytes(buf *bytes.Buffer, b []byte) error {
	n := len(b)
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(0xfd)
		binary.Write(buf, binary.LittleEndian, uint16(n))
	default:
		buf.WriteByte(0xfe)
		binary.Write(buf, binary.LittleEndian, uint32(n))
	}
	buf.Write(b)
	return nil
}

type blindedSpendValueError struct{}

func (blindedSpendValueError) Error() string {
	return "cannot compute sighash: spent output's value is confidential, not explicit"
}

func errBlindedSpendValue() error { return blindedSpendValueError{} }
