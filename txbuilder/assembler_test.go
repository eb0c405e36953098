package txbuilder

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/elopt/asset"
	"github.com/lightninglabs/elopt/covenant"
	"github.com/lightninglabs/elopt/elementstx"
)

func testControlKey() []byte {
	k := make([]byte, 33)
	k[0] = 0x02
	for i := 1; i < 33; i++ {
		k[i] = byte(i)
	}
	return k
}

func testLocked() asset.Params { return asset.New(asset.ID{1}, asset.ID{2}, 5_000_000_000) }
func testClaim() asset.Params  { return asset.New(asset.ID{3}, asset.ID{4}, 3_000_000_000_000) }

func TestBuildSkeletonExercise(t *testing.T) {
	tx, err := BuildSkeleton(OpExercise, testControlKey(), 1735689600, testLocked(), testClaim())
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	if len(tx.TxIn) != 0 {
		t.Fatalf("Phase A skeleton must have zero inputs, got %d", len(tx.TxIn))
	}
	if len(tx.TxOut) != 2 {
		t.Fatalf("exercise skeleton should have 2 outputs, got %d", len(tx.TxOut))
	}
	if tx.LockTime != 0 {
		t.Fatalf("exercise skeleton locktime should be 0, got %d", tx.LockTime)
	}
}

func TestBuildSkeletonExpiryLocktime(t *testing.T) {
	const expiry = 1735689600
	tx, err := BuildSkeleton(OpExpiry, testControlKey(), expiry, testLocked(), testClaim())
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	if tx.LockTime != expiry+1 {
		t.Fatalf("expiry skeleton locktime should be expiry+1=%d, got %d", expiry+1, tx.LockTime)
	}
	if len(tx.TxOut) != 1 {
		t.Fatalf("expiry skeleton should have 1 output, got %d", len(tx.TxOut))
	}
}

func TestBuildSkeletonClaimBenefit(t *testing.T) {
	tx, err := BuildSkeleton(OpClaimBenefit, testControlKey(), 1735689600, testLocked(), testClaim())
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	if len(tx.TxOut) != 1 {
		t.Fatalf("claimbene skeleton should have 1 output, got %d", len(tx.TxOut))
	}
	if tx.LockTime != 0 {
		t.Fatalf("claimbene skeleton locktime should be 0, got %d", tx.LockTime)
	}
}

func TestSpliceReordersOutputsToCovenantPrefix(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()

	tx, err := BuildSkeleton(OpExercise, key, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}

	// Simulate wallet funding: swap the covenant-mandated outputs out of
	// order, as a real funding RPC might hand them back.
	change := tx.TxOut[0]
	tx.TxOut[0] = tx.TxOut[1]
	tx.TxOut[1] = change

	dest := Destination{PkScript: []byte{0x00, 0x14, 0x01}}
	prevout := wire.OutPoint{Index: 0}

	if err := Splice(OpExercise, tx, key, prevout, dest, 1735689600, locked, claim); err != nil {
		t.Fatalf("Splice: %v", err)
	}

	if len(tx.TxIn) != 1 {
		t.Fatalf("expected 1 input after splice, got %d", len(tx.TxIn))
	}
	if len(tx.TxOut) != 3 {
		t.Fatalf("expected 3 outputs after splice, got %d", len(tx.TxOut))
	}

	// burn_option must be back at index 0 (its asset is claim.Companion),
	// confirming the destination's later index does not occupy the
	// covenant-committed prefix (spec.md §8 invariant 2).
	if a, ok := tx.TxOut[0].Asset.Explicit(); !ok || a != claim.Companion {
		t.Fatalf("burn_option was not restored to output index 0")
	}
}

func TestSpliceRejectsConfidentialClaimBenefitDestination(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()

	tx, err := BuildSkeleton(OpClaimBenefit, key, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}

	blindingPubkey := make([]byte, 33)
	blindingPubkey[0] = 0x02
	dest := Destination{PkScript: []byte{0x00, 0x14, 0x01}, BlindingPubKey: blindingPubkey}
	prevout := wire.OutPoint{Index: 0}

	err = Splice(OpClaimBenefit, tx, key, prevout, dest, 1735689600, locked, claim)
	if err == nil {
		t.Fatalf("expected an error for a confidential claimbene destination")
	}
}

func TestSpliceDestinationCarriesNonceWhenConfidential(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()

	tx, err := BuildSkeleton(OpExercise, key, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}

	blindingPubkey := make([]byte, 33)
	blindingPubkey[0] = 0x03
	dest := Destination{PkScript: []byte{0x00, 0x14, 0x01}, BlindingPubKey: blindingPubkey}
	prevout := wire.OutPoint{Index: 0}

	if err := Splice(OpExercise, tx, key, prevout, dest, 1735689600, locked, claim); err != nil {
		t.Fatalf("Splice: %v", err)
	}

	destOut := tx.TxOut[len(tx.TxOut)-1]
	pub, ok := destOut.Nonce.PubKey()
	if !ok {
		t.Fatalf("destination output nonce should be non-null for a confidential address")
	}
	if string(pub) != string(blindingPubkey) {
		t.Fatalf("destination output nonce should equal the blinding pubkey")
	}
}

func TestSpliceFailsWhenCommittedOutputMissing(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()

	// An empty transaction never contains the required burn outputs.
	tx := elementstx.NewTransaction(2, 0)

	dest := Destination{PkScript: []byte{0x00, 0x14, 0x01}}
	prevout := wire.OutPoint{Index: 0}

	err := Splice(OpExercise, tx, key, prevout, dest, 1735689600, locked, claim)
	if err == nil {
		t.Fatalf("expected InvalidClaimTx-class error for a missing committed output")
	}
}

func TestBranchOutputsAndSkeletonOutputsAgree(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()

	tx, err := BuildSkeleton(OpCancel, key, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	outs, err := covenant.CommittedOutputs(covenant.BranchCancel, key, locked, claim)
	if err != nil {
		t.Fatalf("CommittedOutputs: %v", err)
	}
	if len(tx.TxOut) != len(outs) {
		t.Fatalf("skeleton output count should match CommittedOutputs, got %d want %d",
			len(tx.TxOut), len(outs))
	}
	for i := range outs {
		if !tx.TxOut[i].Equal(outs[i]) {
			t.Fatalf("skeleton output %d should equal CommittedOutputs entry %d", i, i)
		}
	}
}
