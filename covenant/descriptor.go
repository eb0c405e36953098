package covenant

import (
	"github.com/lightninglabs/elopt/asset"
	"github.com/lightninglabs/elopt/elementstx"
	"github.com/lightninglabs/elopt/olterrors"
)

// maxScriptElementSize is the script-element size limit that
// checkScriptSize applies to a compiled witness script. The bound on the
// committed outputs is checked separately by txbuilder.
const maxScriptElementSize = 520

// Descriptor is the compiled form of either the deposit descriptor or
// the burn-beneficiary descriptor: the witness script bytes plus the
// script code used at sighash time, and the P2WSH scriptPubKey that
// addresses it.
type Descriptor struct {
	WitnessScript []byte
	ScriptCode    []byte
	ScriptPubKey  []byte
}

// BurnBeneficiaryDescriptor compiles the second-level covenant of
// spec.md §4.3.2: spending this output requires the spender's first
// output to equal burn_beneficiary. This is what locks the
// exercise-payment output so that only the beneficiary-token holder can
// ultimately sweep the strike amount.
func BurnBeneficiaryDescriptor(controlKey []byte, locked asset.Params) ([]byte, *Descriptor, error) {
	burnBene, err := BurnBeneficiary(locked)
	if err != nil {
		return nil, nil, err
	}
	literal, err := SerializeOutput(burnBene)
	if err != nil {
		return nil, nil, err
	}

	compiled := &compiledClaimScript{ControlKey: controlKey, Literal: literal}
	witnessScript := compiled.encode()

	if err := checkScriptSize(witnessScript); err != nil {
		return nil, nil, err
	}

	spk, err := p2wsh(witnessScript)
	if err != nil {
		return nil, nil, err
	}

	log.Debugf("compiled burn-beneficiary descriptor: witness script %d bytes", len(witnessScript))

	desc := &Descriptor{
		WitnessScript: witnessScript,
		ScriptCode:    witnessScript,
		ScriptPubKey:  spk,
	}
	return witnessScript, desc, nil
}

// DepositDescriptor compiles the top-level deposit descriptor of
// spec.md §4.3.1: a covenant-wrapped 1-of-3 threshold over the exercise,
// cancel, and expiry branches, with the control key's signature
// verified by the enclosing covenant wrapper.
func DepositDescriptor(controlKey []byte, expiry uint32, locked, claim asset.Params) (*Descriptor, error) {
	exerciseOutputs, err := CommittedOutputs(BranchExercise, controlKey, locked, claim)
	if err != nil {
		return nil, err
	}
	cancelOutputs, err := CommittedOutputs(BranchCancel, controlKey, locked, claim)
	if err != nil {
		return nil, err
	}
	expiryOutputs, err := CommittedOutputs(BranchExpiry, controlKey, locked, claim)
	if err != nil {
		return nil, err
	}

	exerciseLiteral, err := concatOutputs(exerciseOutputs)
	if err != nil {
		return nil, err
	}
	cancelLiteral, err := concatOutputs(cancelOutputs)
	if err != nil {
		return nil, err
	}
	expiryLiteral, err := concatOutputs(expiryOutputs)
	if err != nil {
		return nil, err
	}

	compiled := &compiledCovenantScript{
		ControlKey:      controlKey,
		Expiry:          expiry,
		ExerciseLiteral: exerciseLiteral,
		CancelLiteral:   cancelLiteral,
		ExpiryLiteral:   expiryLiteral,
	}
	witnessScript := compiled.encode()

	if err := checkScriptSize(witnessScript); err != nil {
		return nil, err
	}

	spk, err := p2wsh(witnessScript)
	if err != nil {
		return nil, err
	}

	log.Debugf("compiled deposit descriptor: expiry=%d witness script %d bytes", expiry, len(witnessScript))

	return &Descriptor{
		WitnessScript: witnessScript,
		ScriptCode:    witnessScript,
		ScriptPubKey:  spk,
	}, nil
}

// ConcatOutputs concatenates the canonical serialization of a
// transaction's leading outputs, in order. The finalizer uses this to
// build the OutputsPrefix entries of a VerifyContext from a candidate
// spending transaction, mirroring exactly how the descriptor compiled
// the literal it must match.
func ConcatOutputs(outs []*elementstx.TxOut) ([]byte, error) {
	return concatOutputs(outs)
}

// concatOutputs concatenates the canonical serialization of each output
// in order, producing the literal the "outputs_pref" fragment embeds.
func concatOutputs(outs []*elementstx.TxOut) ([]byte, error) {
	var all []byte
	for _, o := range outs {
		b, err := SerializeOutput(o)
		if err != nil {
			return nil, err
		}
		all = append(all, b...)
	}
	return all, nil
}

// checkScriptSize enforces the per-output 520-byte script-element bound
// against the compiled witness script, returning MiniscriptCompile on
// violation, actionable by shrinking the contract's destination-script
// complexity (spec.md §4.3.3).
func checkScriptSize(script []byte) error {
	if len(script) > maxScriptElementSize {
		return olterrors.New(olterrors.MiniscriptCompile, "covenant.checkScriptSize",
			errScriptTooLarge(len(script)))
	}
	return nil
}

type scriptTooLargeError struct{ size int }

func (e scriptTooLargeError) Error() string {
	return "compiled witness script exceeds the 520 byte script-element limit"
}

func errScriptTooLarge(size int) error {
	return scriptTooLargeError{size: size}
}
