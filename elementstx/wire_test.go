package elementstx

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/wire"
)

func TestTransactionSerializeRoundTrip(t *testing.T) {
	tx := NewTransaction(2, 0)
	tx.TxOut = []*TxOut{
		NewExplicitTxOut([]byte{0x6a}, 1, testAssetID(0x01)),
		NewExplicitTxOut([]byte{0x00, 0x20}, 1000, testAssetID(0x02)),
	}
	tx.TxIn = []*TxIn{
		NewCovenantTxIn(wire.OutPoint{Index: 0}),
	}

	b, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := DeserializeTransaction(b)
	if err != nil {
		t.Fatalf("DeserializeTransaction: %v", err)
	}

	if got.Version != tx.Version || got.LockTime != tx.LockTime {
		t.Fatalf("version/locktime mismatch: got %+v", got)
	}
	if len(got.TxIn) != len(tx.TxIn) || len(got.TxOut) != len(tx.TxOut) {
		t.Fatalf("input/output count mismatch: got %d/%d want %d/%d",
			len(got.TxIn), len(got.TxOut), len(tx.TxIn), len(tx.TxOut))
	}
	for i := range tx.TxOut {
		if !got.TxOut[i].Equal(tx.TxOut[i]) {
			t.Fatalf("output %d mismatch after round-trip", i)
		}
	}
}

func TestTransactionSerializeWithWitness(t *testing.T) {
	tx := NewTransaction(2, 0)
	tx.TxOut = []*TxOut{NewExplicitTxOut([]byte{0x6a}, 1, testAssetID(0x01))}
	in := NewCovenantTxIn(wire.OutPoint{Index: 3})
	in.Witness = [][]byte{{0x01, 0x02}, {0x03}}
	tx.TxIn = []*TxIn{in}

	b, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := DeserializeTransaction(b)
	if err != nil {
		t.Fatalf("DeserializeTransaction: %v", err)
	}
	if len(got.TxIn[0].Witness) != 2 {
		t.Fatalf("expected 2 witness items, got %d", len(got.TxIn[0].Witness))
	}
	if !bytes.Equal(got.TxIn[0].Witness[0], in.Witness[0]) ||
		!bytes.Equal(got.TxIn[0].Witness[1], in.Witness[1]) {
		t.Fatalf("witness round-trip mismatch")
	}
}

func TestTxIDIgnoresWitness(t *testing.T) {
	tx := NewTransaction(2, 0)
	tx.TxOut = []*TxOut{NewExplicitTxOut([]byte{0x6a}, 1, testAssetID(0x01))}
	in := NewCovenantTxIn(wire.OutPoint{Index: 0})
	tx.TxIn = []*TxIn{in}

	idWithoutWitness, err := tx.TxID()
	if err != nil {
		t.Fatalf("TxID: %v", err)
	}

	tx.TxIn[0].Witness = [][]byte{{0xff}}
	idWithWitness, err := tx.TxID()
	if err != nil {
		t.Fatalf("TxID: %v", err)
	}

	if idWithoutWitness != idWithWitness {
		t.Fatalf("TxID should be witness-independent")
	}
}
