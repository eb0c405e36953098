package covenant

import (
	"testing"

	"github.com/lightninglabs/elopt/asset"
)

func testControlKey() []byte {
	// A well-formed compressed secp256k1 point is not required for
	// these tests since BurnOption/BurnBeneficiary never touch it;
	// ExercisePayment and the descriptor builders only embed the bytes
	// verbatim.
	k := make([]byte, 33)
	k[0] = 0x02
	for i := 1; i < 33; i++ {
		k[i] = byte(i)
	}
	return k
}

func testLocked() asset.Params {
	return asset.New(asset.ID{1}, asset.ID{2}, 5_000_000_000)
}

func testClaim() asset.Params {
	return asset.New(asset.ID{3}, asset.ID{4}, 3_000_000_000_000)
}

func TestBurnOptionShape(t *testing.T) {
	claim := testClaim()
	out, err := BurnOption(claim)
	if err != nil {
		t.Fatalf("BurnOption: %v", err)
	}
	id, ok := out.Asset.Explicit()
	if !ok || id != claim.Companion {
		t.Fatalf("burn_option asset should be claim.Companion")
	}
	v, ok := out.Value.Explicit()
	if !ok || v != 1 {
		t.Fatalf("burn_option value should be 1 explicit unit, got %v ok=%v", v, ok)
	}
	if !out.Nonce.IsNull() {
		t.Fatalf("burn_option nonce should be null")
	}
}

func TestBurnBeneficiaryWrappedDiffersFromUnwrapped(t *testing.T) {
	locked := testLocked()

	plain, err := BurnBeneficiary(locked)
	if err != nil {
		t.Fatalf("BurnBeneficiary: %v", err)
	}
	wrapped, err := BurnBeneficiaryWrapped(locked)
	if err != nil {
		t.Fatalf("BurnBeneficiaryWrapped: %v", err)
	}

	if string(plain.PkScript) == string(wrapped.PkScript) {
		t.Fatalf("wrapped and unwrapped burn_beneficiary scripts must differ")
	}
	if a, _ := plain.Asset.Explicit(); a != locked.Companion {
		t.Fatalf("burn_beneficiary asset mismatch")
	}
}

func TestExercisePaymentCarriesStrikeAmount(t *testing.T) {
	locked, claim := testLocked(), testClaim()

	out, witnessScript, err := ExercisePayment(testControlKey(), locked, claim)
	if err != nil {
		t.Fatalf("ExercisePayment: %v", err)
	}
	if len(witnessScript) == 0 {
		t.Fatalf("expected non-empty witness script")
	}

	v, ok := out.Value.Explicit()
	if !ok || v != claim.Value {
		t.Fatalf("exercise_payment value should equal claim.Value, got %v ok=%v", v, ok)
	}
	a, ok := out.Asset.Explicit()
	if !ok || a != claim.Asset {
		t.Fatalf("exercise_payment asset should equal claim.Asset")
	}
	if !out.Nonce.IsNull() {
		t.Fatalf("exercise_payment nonce should be null (spec.md §3 invariant)")
	}
}
