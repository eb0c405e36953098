// Package finalize implements the covenant finalizer (C5): it computes
// the segwit v0 sighash over a spliced transaction, signs it with the
// well-known control key, runs the compiled covenant script's satisfier
// to build the witness stack, and — as a self-check before handing the
// transaction back — evaluates the witness against the script the same
// way a validating node would (spec.md §4.5).
package finalize

import (
	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/lightninglabs/elopt/covenant"
	"github.com/lightninglabs/elopt/elementstx"
	"github.com/lightninglabs/elopt/olterrors"
)

// FinalizeDeposit signs and finalizes a transaction spending the deposit
// descriptor via the given branch. desc must be the Descriptor the
// covenant input's scriptPubKey was derived from; controlPrivKey is the
// well-known control private key (spec.md §6). spentValue is the
// explicit value field of the deposit output being spent.
//
// On success tx.TxIn[inputIndex].Witness is populated and tx is
// returned; the caller is responsible for wire-encoding it for
// broadcast (spec.md §4.5 step 5's "extract").
func FinalizeDeposit(tx *elementstx.Transaction, inputIndex int, branch covenant.Branch, desc *covenant.Descriptor, spentValue elementstx.Value, controlPrivKey []byte) (*elementstx.Transaction, error) {
	literal, expiry, err := covenant.BranchLiteral(desc.WitnessScript, branch)
	if err != nil {
		return nil, olterrors.New(olterrors.MiniscriptCompile, "finalize.FinalizeDeposit", err)
	}

	sighash, err := ComputeSighash(tx, inputIndex, desc.ScriptCode, spentValue, SighashAll)
	if err != nil {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeDeposit", err)
	}

	rawSig, err := signControlKey(controlPrivKey, sighash)
	if err != nil {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeDeposit", err)
	}

	witness := covenant.BuildDepositWitness(branch, rawSig, literal, desc.WitnessScript)
	tx.TxIn[inputIndex].Witness = witness

	prefixLen := 2
	if branch == covenant.BranchExpiry {
		prefixLen = 1
	}
	prefix, err := outputsPrefix(tx, prefixLen)
	if err != nil {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeDeposit", err)
	}

	ok, err := covenant.Evaluate(desc.WitnessScript, witness, covenant.VerifyContext{
		OutputsPrefix: map[int][]byte{prefixLen: prefix},
		LockTime:      tx.LockTime,
		Sighash:       sighash,
	})
	if err != nil {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeDeposit", err)
	}
	if !ok {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeDeposit", errWitnessRejected())
	}
	if branch == covenant.BranchExpiry && tx.LockTime < expiry {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeDeposit", errLocktimeTooEarly())
	}

	log.Infof("finalized deposit spend: branch=%s input=%d", branch, inputIndex)
	return tx, nil
}

// FinalizeClaim signs and finalizes a transaction spending the
// burn-beneficiary descriptor that secures an exercise-payment output
// (spec.md §4.3.2's claimbene spend).
func FinalizeClaim(tx *elementstx.Transaction, inputIndex int, desc *covenant.Descriptor, spentValue elementstx.Value, controlPrivKey []byte) (*elementstx.Transaction, error) {
	literal, err := covenant.ClaimLiteral(desc.WitnessScript)
	if err != nil {
		return nil, olterrors.New(olterrors.MiniscriptCompile, "finalize.FinalizeClaim", err)
	}

	sighash, err := ComputeSighash(tx, inputIndex, desc.ScriptCode, spentValue, SighashAll)
	if err != nil {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeClaim", err)
	}

	rawSig, err := signControlKey(controlPrivKey, sighash)
	if err != nil {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeClaim", err)
	}

	witness := covenant.BuildClaimWitness(rawSig, literal, desc.WitnessScript)
	tx.TxIn[inputIndex].Witness = witness

	prefix, err := outputsPrefix(tx, 1)
	if err != nil {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeClaim", err)
	}

	ok, err := covenant.Evaluate(desc.WitnessScript, witness, covenant.VerifyContext{
		OutputsPrefix: map[int][]byte{1: prefix},
		LockTime:      tx.LockTime,
		Sighash:       sighash,
	})
	if err != nil {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeClaim", err)
	}
	if !ok {
		return nil, olterrors.New(olterrors.SignerFailure, "finalize.FinalizeClaim", errWitnessRejected())
	}

	log.Infof("finalized claimbene spend: input=%d", inputIndex)
	return tx, nil
}

// outputsPrefix concatenates the canonical serialization of tx's first n
// outputs, the same way the compiled script's literal was built.
func outputsPrefix(tx *elementstx.Transaction, n int) ([]byte, error) {
	if len(tx.TxOut) < n {
		return nil, errShortOutputPrefix(n, len(tx.TxOut))
	}
	return covenant.ConcatOutputs(tx.TxOut[:n])
}

// signControlKey produces a low-S DER signature over sighash with
// controlPrivKey, with the sighash-type byte appended — the shape a
// script witness stack element carries (spec.md §4.5 step 4, mirroring
// the teacher's RawTxInWitnessSignature).
func signControlKey(controlPrivKey []byte, sighash [32]byte) ([]byte, error) {
	priv, _ := btcec.PrivKeyFromBytes(controlPrivKey)
	sig := btcecdsa.Sign(priv, sighash[:])

	rawSig := append(sig.Serialize(), byte(SighashAll))
	return rawSig, nil
}

type witnessRejectedError struct{}

func (witnessRejectedError) Error() string {
	return "compiled covenant script rejected the assembled witness"
}
func errWitnessRejected() error { return witnessRejectedError{} }

type locktimeTooEarlyError struct{}

func (locktimeTooEarlyError) Error() string {
	return "transaction locktime does not meet the expiry branch's minimum"
}
func errLocktimeTooEarly() error { return locktimeTooEarlyError{} }

type shortOutputPrefixError struct{ want, have int }

func (e shortOutputPrefixError) Error() string {
	return "transaction has fewer outputs than the committed prefix requires"
}
func errShortOutputPrefix(want, have int) error {
	return shortOutputPrefixError{want: want, have: have}
}
