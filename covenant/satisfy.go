package covenant

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// VerifyContext is everything the evaluator needs to check a witness
// against a compiled covenant script that it cannot derive from the
// script and witness alone: the spending transaction's actual output
// bytes, its locktime, and the sighash the signature must cover.
type VerifyContext struct {
	// OutputsPrefix maps a prefix length (1 or 2) to the concatenated
	// canonical serialization of the spending transaction's first N
	// outputs.
	OutputsPrefix map[int][]byte

	// LockTime is the spending transaction's nLockTime.
	LockTime uint32

	// Sighash is the digest the control-key signature must verify
	// against.
	Sighash [32]byte
}

// BuildDepositWitness assembles the witness stack for spending the
// deposit descriptor via the given branch: the control-key signature
// (with sighash-type byte appended), the branch selector, the literal
// bytes of the committed output prefix, and the witness script itself —
// the exact shape a P2WSH spend requires, with the covenant's output-
// prefix commitment carried as a single prefix argument (spec.md §4.5
// step 6).
func BuildDepositWitness(branch Branch, rawSig []byte, outputsLiteral []byte, witnessScript []byte) [][]byte {
	return [][]byte{
		rawSig,
		[]byte{byte(branch)},
		outputsLiteral,
		witnessScript,
	}
}

// BuildClaimWitness assembles the witness stack for spending the
// burn-beneficiary descriptor.
func BuildClaimWitness(rawSig []byte, outputsLiteral []byte, witnessScript []byte) [][]byte {
	return [][]byte{
		rawSig,
		outputsLiteral,
		witnessScript,
	}
}

// Evaluate is the miniscript satisfier's verification counterpart: it
// decodes the witness script, checks the witness against it, and
// returns whether the script accepts. A false result or an error both
// indicate the witness does not satisfy the covenant — in practice,
// that the committed output bytes in the spending transaction don't
// match the descriptor's required prefix (spec.md §4.5, final
// paragraph).
func Evaluate(witnessScript []byte, witness [][]byte, ctx VerifyContext) (bool, error) {
	if len(witnessScript) == 0 {
		return false, fmt.Errorf("empty witness script")
	}

	switch witnessScript[0] {
	case covenantScriptTag:
		return evaluateDeposit(witnessScript, witness, ctx)
	case claimScriptTag:
		return evaluateClaim(witnessScript, witness, ctx)
	default:
		return false, fmt.Errorf("unrecognized witness script tag 0x%02x", witnessScript[0])
	}
}

func evaluateDeposit(witnessScript []byte, witness [][]byte, ctx VerifyContext) (bool, error) {
	compiled, err := decodeCovenantScript(witnessScript)
	if err != nil {
		return false, err
	}
	if len(witness) != 4 {
		return false, fmt.Errorf("deposit witness must have 4 items, got %d", len(witness))
	}
	rawSig, branchByte, literal := witness[0], witness[1], witness[2]
	if len(branchByte) != 1 {
		return false, fmt.Errorf("malformed branch selector")
	}
	branch := Branch(branchByte[0])

	var want []byte
	prefixCount := 2
	switch branch {
	case BranchExercise:
		want = compiled.ExerciseLiteral
	case BranchCancel:
		want = compiled.CancelLiteral
	case BranchExpiry:
		want = compiled.ExpiryLiteral
		prefixCount = 1
		if ctx.LockTime < compiled.Expiry {
			return false, nil
		}
	default:
		return false, fmt.Errorf("unknown branch selector %d", branch)
	}

	if !bytes.Equal(literal, want) {
		return false, nil
	}
	if actual, ok := ctx.OutputsPrefix[prefixCount]; !ok || !bytes.Equal(actual, literal) {
		return false, nil
	}

	return verifyControlSig(compiled.ControlKey, rawSig, ctx.Sighash)
}

func evaluateClaim(witnessScript []byte, witness [][]byte, ctx VerifyContext) (bool, error) {
	compiled, err := decodeClaimScript(witnessScript)
	if err != nil {
		return false, err
	}
	if len(witness) != 3 {
		return false, fmt.Errorf("claim witness must have 3 items, got %d", len(witness))
	}
	rawSig, literal := witness[0], witness[1]

	if !bytes.Equal(literal, compiled.Literal) {
		return false, nil
	}
	if actual, ok := ctx.OutputsPrefix[1]; !ok || !bytes.Equal(actual, literal) {
		return false, nil
	}

	return verifyControlSig(compiled.ControlKey, rawSig, ctx.Sighash)
}

// verifyControlSig checks an ECDSA signature with a trailing sighash-
// type byte against the control pubkey and the supplied sighash.
func verifyControlSig(pubKeyBytes, rawSig []byte, sighash [32]byte) (bool, error) {
	if len(rawSig) < 2 {
		return false, fmt.Errorf("signature too short")
	}
	derSig := rawSig[:len(rawSig)-1]

	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false, fmt.Errorf("parse control pubkey: %w", err)
	}
	sig, err := btcecdsa.ParseDERSignature(derSig)
	if err != nil {
		return false, fmt.Errorf("parse signature: %w", err)
	}

	return sig.Verify(sighash[:], pubKey), nil
}
