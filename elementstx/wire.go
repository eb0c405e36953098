package elementstx

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/elopt/asset"
)

// TxOut is the semantic view of a transaction output the covenant
// commits to: script_pubkey, a confidential value, a confidential asset,
// and a nonce (spec.md §3).
type TxOut struct {
	Asset    Asset
	Value    Value
	Nonce    Nonce
	PkScript []byte
}

// Equal reports structural equality between two outputs. The assembler
// uses this to locate a covenant-mandated output inside a funded
// transaction by its exact byte-level content.
func (o *TxOut) Equal(other *TxOut) bool {
	if other == nil {
		return false
	}
	return o.Asset.Equal(other.Asset) &&
		o.Value.Equal(other.Value) &&
		o.Nonce.Equal(other.Nonce) &&
		bytes.Equal(o.PkScript, other.PkScript)
}

// NewExplicitTxOut builds a TxOut with explicit asset and value and a
// null nonce — the shape every covenant-committed output must take,
// per spec.md §3's invariant that committed outputs carry no blinding.
func NewExplicitTxOut(pkScript []byte, value uint64, id asset.ID) *TxOut {
	return &TxOut{
		Asset:    ExplicitAsset(id),
		Value:    ExplicitValue(value),
		Nonce:    NullNonce(),
		PkScript: pkScript,
	}
}

// TxIn is a transaction input. Issuance and pegin are out of scope for
// every operation this core performs, so they're carried as booleans
// rather than full sub-structures; the core always constructs them as
// false (spec.md §4.4 step 1).
type TxIn struct {
	PreviousOutPoint wire.OutPoint
	IsPegin          bool
	HasIssuance      bool
	SignatureScript  []byte
	Sequence         uint32
	Witness          [][]byte
}

// NewCovenantTxIn builds the covenant input of spec.md §4.4 step 1:
// previous_output = prevout, sequence = 0, empty scriptSig, empty
// witness, no issuance, no pegin.
func NewCovenantTxIn(prevout wire.OutPoint) *TxIn {
	return &TxIn{
		PreviousOutPoint: prevout,
		IsPegin:          false,
		HasIssuance:      false,
		SignatureScript:  nil,
		Sequence:         0,
		Witness:          nil,
	}
}

// Transaction is the semantic and wire view of an Elements-family
// transaction used throughout this core.
type Transaction struct {
	Version  uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewTransaction builds a transaction with the given version and
// locktime and no inputs or outputs, matching the Phase A skeleton shape
// of spec.md §4.4.
func NewTransaction(version, lockTime uint32) *Transaction {
	return &Transaction{Version: version, LockTime: lockTime}
}

// hasWitness reports whether any input carries a non-empty witness
// stack, determining whether the wire encoding includes a witness flag
// and the per-input witness trailer.
func (tx *Transaction) hasWitness() bool {
	for _, in := range tx.TxIn {
		if len(in.Witness) > 0 {
			return true
		}
	}
	return false
}

// Serialize produces the consensus-shaped wire encoding of the
// transaction: version, a single witness-flag byte, inputs, outputs (each
// via the canonical output encoding of the covenant's output serializer),
// locktime, and — if any input carries a witness — a witness trailer.
func (tx *Transaction) Serialize() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, tx.Version); err != nil {
		return nil, err
	}

	witnessFlag := byte(0)
	if tx.hasWitness() {
		witnessFlag = 1
	}
	buf.WriteByte(witnessFlag)

	if err := writeVarInt(&buf, uint64(len(tx.TxIn))); err != nil {
		return nil, err
	}
	for _, in := range tx.TxIn {
		if err := writeTxIn(&buf, in); err != nil {
			return nil, err
		}
	}

	if err := writeVarInt(&buf, uint64(len(tx.TxOut))); err != nil {
		return nil, err
	}
	for _, out := range tx.TxOut {
		b, err := SerializeOutput(out)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}

	if err := binary.Write(&buf, binary.LittleEndian, tx.LockTime); err != nil {
		return nil, err
	}

	if witnessFlag == 1 {
		for _, in := range tx.TxIn {
			if err := writeVarInt(&buf, uint64(len(in.Witness))); err != nil {
				return nil, err
			}
			for _, item := range in.Witness {
				if err := writeVarBytes(&buf, item); err != nil {
					return nil, err
				}
			}
		}
	}

	return buf.Bytes(), nil
}

// DeserializeTransaction parses the wire encoding produced by Serialize.
func DeserializeTransaction(b []byte) (*Transaction, error) {
	r := bytes.NewReader(b)
	tx := &Transaction{}

	if err := binary.Read(r, binary.LittleEndian, &tx.Version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}

	witnessFlag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read witness flag: %w", err)
	}

	inCount, err := readVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read input count: %w", err)
	}
	tx.TxIn = make([]*TxIn, inCount)
	for i := range tx.TxIn {
		in, err := readTxIn(r)
		if err != nil {
			return nil, fmt.Errorf("read input %d: %w", i, err)
		}
		tx.TxIn[i] = in
	}

	outCount, err := readVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read output count: %w", err)
	}
	tx.TxOut = make([]*TxOut, outCount)
	for i := range tx.TxOut {
		out, err := deserializeOutput(r)
		if err != nil {
			return nil, fmt.Errorf("read output %d: %w", i, err)
		}
		tx.TxOut[i] = out
	}

	if err := binary.Read(r, binary.LittleEndian, &tx.LockTime); err != nil {
		return nil, fmt.Errorf("read locktime: %w", err)
	}

	if witnessFlag == 1 {
		for i, in := range tx.TxIn {
			n, err := readVarInt(r)
			if err != nil {
				return nil, fmt.Errorf("read witness count for input %d: %w", i, err)
			}
			in.Witness = make([][]byte, n)
			for j := range in.Witness {
				item, err := readVarBytes(r)
				if err != nil {
					return nil, fmt.Errorf("read witness item %d/%d: %w", i, j, err)
				}
				in.Witness[j] = item
			}
		}
	}

	return tx, nil
}

func writeTxIn(buf *bytes.Buffer, in *TxIn) error {
	buf.Write(in.PreviousOutPoint.Hash[:])
	if err := binary.Write(buf, binary.LittleEndian, in.PreviousOutPoint.Index); err != nil {
		return err
	}
	flags := byte(0)
	if in.IsPegin {
		flags |= 0x01
	}
	if in.HasIssuance {
		flags |= 0x02
	}
	buf.WriteByte(flags)
	if err := writeVarBytes(buf, in.SignatureScript); err != nil {
		return err
	}
	return binary.Write(buf, binary.LittleEndian, in.Sequence)
}

func readTxIn(r *bytes.Reader) (*TxIn, error) {
	in := &TxIn{}
	if _, err := r.Read(in.PreviousOutPoint.Hash[:]); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &in.PreviousOutPoint.Index); err != nil {
		return nil, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	in.IsPegin = flags&0x01 != 0
	in.HasIssuance = flags&0x02 != 0
	sigScript, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	in.SignatureScript = sigScript
	if err := binary.Read(r, binary.LittleEndian, &in.Sequence); err != nil {
		return nil, err
	}
	return in, nil
}

// TxID computes the double-SHA256 transaction hash over the
// witness-free serialization, matching the teacher's use of
// chainhash for transaction identifiers.
func (tx *Transaction) TxID() (chainhash.Hash, error) {
	stripped := &Transaction{
		Version:  tx.Version,
		LockTime: tx.LockTime,
		TxOut:    tx.TxOut,
	}
	for _, in := range tx.TxIn {
		stripped.TxIn = append(stripped.TxIn, &TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			IsPegin:          in.IsPegin,
			HasIssuance:      in.HasIssuance,
			SignatureScript:  in.SignatureScript,
			Sequence:         in.Sequence,
		})
	}
	b, err := stripped.Serialize()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.DoubleHashH(b), nil
}
