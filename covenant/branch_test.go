package covenant

import "testing"

func TestCommittedOutputsExerciseOrder(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()

	outs, err := CommittedOutputs(BranchExercise, key, locked, claim)
	if err != nil {
		t.Fatalf("CommittedOutputs: %v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("exercise branch should commit 2 outputs, got %d", len(outs))
	}
	if a, _ := outs[0].Asset.Explicit(); a != claim.Companion {
		t.Fatalf("outs[0] should be burn_option")
	}
	if a, _ := outs[1].Asset.Explicit(); a != claim.Asset {
		t.Fatalf("outs[1] should be exercise_payment")
	}
}

func TestCommittedOutputsCancelOrder(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()

	outs, err := CommittedOutputs(BranchCancel, key, locked, claim)
	if err != nil {
		t.Fatalf("CommittedOutputs: %v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("cancel branch should commit 2 outputs, got %d", len(outs))
	}
	if a, _ := outs[0].Asset.Explicit(); a != claim.Companion {
		t.Fatalf("outs[0] should be burn_option")
	}
	if a, _ := outs[1].Asset.Explicit(); a != locked.Companion {
		t.Fatalf("outs[1] should be burn_beneficiary_wrapped")
	}
}

func TestCommittedOutputsExpiryOrder(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()

	outs, err := CommittedOutputs(BranchExpiry, key, locked, claim)
	if err != nil {
		t.Fatalf("CommittedOutputs: %v", err)
	}
	if len(outs) != 1 {
		t.Fatalf("expiry branch should commit 1 output, got %d", len(outs))
	}
	if a, _ := outs[0].Asset.Explicit(); a != locked.Companion {
		t.Fatalf("outs[0] should be burn_beneficiary")
	}
}

func TestCommittedOutputsUnknownBranch(t *testing.T) {
	if _, err := CommittedOutputs(Branch(99), testControlKey(), testLocked(), testClaim()); err == nil {
		t.Fatalf("expected error for unknown branch")
	}
}
