package covenant

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

func TestEvaluateAcceptsCorrectExerciseWitness(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	pub := priv.PubKey().SerializeCompressed()
	locked, claim := testLocked(), testClaim()

	desc, err := DepositDescriptor(pub, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("DepositDescriptor: %v", err)
	}

	literal, _, err := BranchLiteral(desc.WitnessScript, BranchExercise)
	if err != nil {
		t.Fatalf("BranchLiteral: %v", err)
	}

	var sighash [32]byte
	if _, err := rand.Read(sighash[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	sig := btcecdsa.Sign(priv, sighash[:])
	rawSig := append(sig.Serialize(), 0x01)

	witness := BuildDepositWitness(BranchExercise, rawSig, literal, desc.WitnessScript)

	ok, err := Evaluate(desc.WitnessScript, witness, VerifyContext{
		OutputsPrefix: map[int][]byte{2: literal},
		LockTime:      0,
		Sighash:       sighash,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ok {
		t.Fatalf("Evaluate should accept a correctly assembled exercise witness")
	}
}

func TestEvaluateRejectsWrongBranchLiteral(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	pub := priv.PubKey().SerializeCompressed()
	locked, claim := testLocked(), testClaim()

	desc, err := DepositDescriptor(pub, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("DepositDescriptor: %v", err)
	}

	cancelLiteral, _, err := BranchLiteral(desc.WitnessScript, BranchCancel)
	if err != nil {
		t.Fatalf("BranchLiteral: %v", err)
	}

	var sighash [32]byte
	sig := btcecdsa.Sign(priv, sighash[:])
	rawSig := append(sig.Serialize(), 0x01)

	// Claim the exercise branch but supply the cancel branch's literal:
	// the evaluator must reject this.
	witness := BuildDepositWitness(BranchExercise, rawSig, cancelLiteral, desc.WitnessScript)

	ok, err := Evaluate(desc.WitnessScript, witness, VerifyContext{
		OutputsPrefix: map[int][]byte{2: cancelLiteral},
		LockTime:      0,
		Sighash:       sighash,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ok {
		t.Fatalf("Evaluate should reject a mismatched branch literal")
	}
}

func TestEvaluateRejectsExpiryBeforeLocktime(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	pub := priv.PubKey().SerializeCompressed()
	locked, claim := testLocked(), testClaim()
	const expiry = 1735689600

	desc, err := DepositDescriptor(pub, expiry, locked, claim)
	if err != nil {
		t.Fatalf("DepositDescriptor: %v", err)
	}

	literal, _, err := BranchLiteral(desc.WitnessScript, BranchExpiry)
	if err != nil {
		t.Fatalf("BranchLiteral: %v", err)
	}

	var sighash [32]byte
	sig := btcecdsa.Sign(priv, sighash[:])
	rawSig := append(sig.Serialize(), 0x01)
	witness := BuildDepositWitness(BranchExpiry, rawSig, literal, desc.WitnessScript)

	ok, err := Evaluate(desc.WitnessScript, witness, VerifyContext{
		OutputsPrefix: map[int][]byte{1: literal},
		LockTime:      expiry - 1,
		Sighash:       sighash,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ok {
		t.Fatalf("Evaluate should reject a transaction whose locktime precedes expiry")
	}
}
