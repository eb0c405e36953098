package covenant

import (
	"bytes"
	"testing"
)

func TestDepositDescriptorDeterministic(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()

	d1, err := DepositDescriptor(key, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("DepositDescriptor: %v", err)
	}
	d2, err := DepositDescriptor(key, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("DepositDescriptor: %v", err)
	}

	if !bytes.Equal(d1.WitnessScript, d2.WitnessScript) {
		t.Fatalf("DepositDescriptor is not deterministic")
	}
	if !bytes.Equal(d1.ScriptPubKey, d2.ScriptPubKey) {
		t.Fatalf("derived scriptPubKey is not deterministic")
	}
}

func TestDepositDescriptorBranchLiteralsMatchCommittedOutputs(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()
	const expiry = 1735689600

	desc, err := DepositDescriptor(key, expiry, locked, claim)
	if err != nil {
		t.Fatalf("DepositDescriptor: %v", err)
	}

	for _, branch := range []Branch{BranchExercise, BranchCancel, BranchExpiry} {
		outs, err := CommittedOutputs(branch, key, locked, claim)
		if err != nil {
			t.Fatalf("CommittedOutputs(%v): %v", branch, err)
		}
		want, err := ConcatOutputs(outs)
		if err != nil {
			t.Fatalf("ConcatOutputs: %v", err)
		}

		got, gotExpiry, err := BranchLiteral(desc.WitnessScript, branch)
		if err != nil {
			t.Fatalf("BranchLiteral(%v): %v", branch, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("branch %v literal mismatch: descriptor committed a different prefix than CommittedOutputs produces", branch)
		}
		if branch == BranchExpiry && gotExpiry != expiry {
			t.Fatalf("expiry literal should carry expiry=%d, got %d", expiry, gotExpiry)
		}
	}
}

func TestBurnBeneficiaryDescriptorScriptSizeLimit(t *testing.T) {
	locked := testLocked()
	hugeKey := make([]byte, 600)

	_, _, err := BurnBeneficiaryDescriptor(hugeKey, locked)
	if err == nil {
		t.Fatalf("expected MiniscriptCompile error for an oversized witness script")
	}
}
