// Package covenant implements the covenant-script state machine: the
// output templates (C2), the output serializer re-export (C1), and the
// descriptor builder that compiles those templates into the deposit
// address and the auxiliary exercise-payment address (C3).
package covenant

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightninglabs/elopt/asset"
	"github.com/lightninglabs/elopt/elementstx"
)

// SerializeOutput re-exports the canonical output serializer (C1) so
// descriptor and assembler code can depend on the covenant package alone
// rather than reaching into elementstx directly for this one function.
func SerializeOutput(out *elementstx.TxOut) ([]byte, error) {
	return elementstx.SerializeOutput(out)
}

// opReturnScript builds a bare, provably-unspendable OP_RETURN script
// with no pushed data, in the teacher's ScriptBuilder idiom
// (lnwallet/script_utils.go's witnessScriptHash builds every script this
// way).
func opReturnScript() ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		Script()
}

// p2wsh wraps a witness script in its v0 P2WSH output script:
// OP_0 <sha256(script)>.
func p2wsh(script []byte) ([]byte, error) {
	h := sha256Sum(script)
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(h[:]).
		Script()
}

// BurnOption builds the burn_option template of spec.md §4.2: 1 unit of
// the claim side's companion (the option token) sent to a bare
// OP_RETURN.
func BurnOption(claim asset.Params) (*elementstx.TxOut, error) {
	script, err := opReturnScript()
	if err != nil {
		return nil, err
	}
	return elementstx.NewExplicitTxOut(script, 1, claim.Companion), nil
}

// BurnBeneficiary builds the burn_beneficiary template of spec.md §4.2:
// 1 unit of the locked side's companion (the beneficiary/writer token)
// sent to a bare OP_RETURN.
func BurnBeneficiary(locked asset.Params) (*elementstx.TxOut, error) {
	script, err := opReturnScript()
	if err != nil {
		return nil, err
	}
	return elementstx.NewExplicitTxOut(script, 1, locked.Companion), nil
}

// BurnBeneficiaryWrapped builds the burn_beneficiary_wrapped template:
// identical to BurnBeneficiary except the script is P2WSH-wrapped,
// because the chain forbids two literal OP_RETURN outputs in one
// transaction and the cancel path needs two burns.
func BurnBeneficiaryWrapped(locked asset.Params) (*elementstx.TxOut, error) {
	inner, err := opReturnScript()
	if err != nil {
		return nil, err
	}
	wrapped, err := p2wsh(inner)
	if err != nil {
		return nil, err
	}
	return elementstx.NewExplicitTxOut(wrapped, 1, locked.Companion), nil
}

// ExercisePayment builds the exercise_payment template: the strike
// amount of the claim asset sent to a P2WSH output whose witness script
// is the burn-beneficiary descriptor of §4.3.2, closing the loop so that
// only the beneficiary-token holder can ultimately sweep the strike
// amount. It returns the payment output and the witness script that
// secures it, so the finalizer can reuse the latter without
// recompiling the descriptor.
func ExercisePayment(controlKey []byte, locked, claim asset.Params) (*elementstx.TxOut, []byte, error) {
	witnessScript, desc, err := BurnBeneficiaryDescriptor(controlKey, locked)
	if err != nil {
		return nil, nil, err
	}
	out := elementstx.NewExplicitTxOut(desc.ScriptPubKey, claim.Value, claim.Asset)
	return out, witnessScript, nil
}
