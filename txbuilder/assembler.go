// Package txbuilder implements the transaction assembler (C4): for each
// of the four user operations it emits the Phase A skeleton and performs
// the Phase B splice that turns a wallet-funded transaction into a
// covenant-satisfying one (spec.md §4.4).
package txbuilder

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/elopt/asset"
	"github.com/lightninglabs/elopt/covenant"
	"github.com/lightninglabs/elopt/elementstx"
	"github.com/lightninglabs/elopt/olterrors"
)

// Operation names one of the four terminal operations a contract can be
// spent with.
type Operation int

const (
	OpExercise Operation = iota
	OpCancel
	OpExpiry
	OpClaimBenefit
)

func (op Operation) String() string {
	switch op {
	case OpExercise:
		return "exercise"
	case OpCancel:
		return "cancel"
	case OpExpiry:
		return "expiry"
	case OpClaimBenefit:
		return "claimbene"
	default:
		return "unknown"
	}
}

// Destination is the semantic view of the address the wallet is paying
// out to: its scriptPubKey, and — if it is a confidential address — the
// blinding pubkey that must populate the output's nonce field.
type Destination struct {
	PkScript       []byte
	BlindingPubKey []byte // nil for a non-confidential address
}

func (d Destination) isConfidential() bool {
	return len(d.BlindingPubKey) > 0
}

// maxOutputsByteLen is the §3/§4.4 bound: 520 bytes of committed-output
// payload plus one compact-size length byte.
const maxOutputsByteLen = 521

// inflationPerConfidentialOutput is the flat 24-byte allowance per
// non-null-nonce output (accounting for value-commitment expansion from
// 9 to 33 bytes), applied per spec.md §3 even though it is not
// output-type-aware.
const inflationPerConfidentialOutput = 24

// BuildSkeleton returns the Phase A skeleton for op: a transaction with
// zero inputs and the covenant-mandated outputs in positions 0..k-1,
// version 2, and locktime expiry+1 for expiry, else 0 (spec.md §4.4).
func BuildSkeleton(op Operation, controlKey []byte, expiry uint32, locked, claim asset.Params) (*elementstx.Transaction, error) {
	const txVersion = 2

	switch op {
	case OpExercise:
		outs, err := covenant.CommittedOutputs(covenant.BranchExercise, controlKey, locked, claim)
		if err != nil {
			return nil, err
		}
		tx := elementstx.NewTransaction(txVersion, 0)
		tx.TxOut = outs
		return tx, nil

	case OpCancel:
		outs, err := covenant.CommittedOutputs(covenant.BranchCancel, controlKey, locked, claim)
		if err != nil {
			return nil, err
		}
		tx := elementstx.NewTransaction(txVersion, 0)
		tx.TxOut = outs
		return tx, nil

	case OpExpiry:
		outs, err := covenant.CommittedOutputs(covenant.BranchExpiry, controlKey, locked, claim)
		if err != nil {
			return nil, err
		}
		tx := elementstx.NewTransaction(txVersion, expiry+1)
		tx.TxOut = outs
		return tx, nil

	case OpClaimBenefit:
		burnBene, err := covenant.BurnBeneficiary(locked)
		if err != nil {
			return nil, err
		}
		tx := elementstx.NewTransaction(txVersion, 0)
		tx.TxOut = []*elementstx.TxOut{burnBene}
		return tx, nil

	default:
		return nil, olterrors.New(olterrors.MiniscriptCompile, "txbuilder.BuildSkeleton", errUnknownOperation(op))
	}
}

// Splice implements Phase B (spec.md §4.4 steps 1-5): it appends the
// covenant input and the destination output to a wallet-funded
// transaction, reorders outputs so the covenant-committed prefix
// occupies indices 0..k-1, and enforces the committed-output size bound.
//
// claimbene additionally rejects a confidential destination before doing
// any of the above, since the wallet cannot blind an output whose
// spending input it does not recognize as its own (spec.md §4.4 table,
// "destination MUST be non-confidential").
func Splice(op Operation, tx *elementstx.Transaction, controlKey []byte, contractPrevout wire.OutPoint, dest Destination, expiry uint32, locked, claim asset.Params) error {
	if op == OpClaimBenefit && dest.isConfidential() {
		return olterrors.New(olterrors.SizeLimitExceeded, "txbuilder.Splice",
			errConfidentialClaimDestination())
	}

	destAsset, destValue := destinationAmount(op, locked, claim)

	in := elementstx.NewCovenantTxIn(contractPrevout)
	out := elementstx.NewExplicitTxOut(dest.PkScript, destValue, destAsset)
	if dest.isConfidential() {
		nonce, err := elementstx.NonceFromPubKey(dest.BlindingPubKey)
		if err != nil {
			return olterrors.New(olterrors.ConfigInvalid, "txbuilder.Splice", err)
		}
		out.Nonce = nonce
	}

	tx.TxIn = append(tx.TxIn, in)
	tx.TxOut = append(tx.TxOut, out)

	required, err := requiredOutputs(op, controlKey, locked, claim)
	if err != nil {
		return err
	}
	if err := reorderOutputs(tx, required); err != nil {
		return err
	}

	if err := checkOutputSize(tx); err != nil {
		return err
	}

	log.Debugf("spliced %s: %d inputs, %d outputs, prevout %s", op, len(tx.TxIn), len(tx.TxOut), contractPrevout)
	return nil
}

// destinationAmount returns the asset and value the destination output
// carries, per the table in spec.md §4.4.
func destinationAmount(op Operation, locked, claim asset.Params) (asset.ID, uint64) {
	if op == OpClaimBenefit {
		return claim.Asset, claim.Value
	}
	return locked.Asset, locked.Value
}

// requiredOutputs returns, for the given operation, the ordered list of
// covenant-mandated outputs that must occupy the transaction's output
// prefix after splicing.
func requiredOutputs(op Operation, controlKey []byte, locked, claim asset.Params) ([]*elementstx.TxOut, error) {
	switch op {
	case OpExercise:
		return covenant.CommittedOutputs(covenant.BranchExercise, controlKey, locked, claim)
	case OpCancel:
		return covenant.CommittedOutputs(covenant.BranchCancel, controlKey, locked, claim)
	case OpExpiry:
		return covenant.CommittedOutputs(covenant.BranchExpiry, controlKey, locked, claim)
	case OpClaimBenefit:
		burnBene, err := covenant.BurnBeneficiary(locked)
		if err != nil {
			return nil, err
		}
		return []*elementstx.TxOut{burnBene}, nil
	default:
		return nil, olterrors.New(olterrors.MiniscriptCompile, "txbuilder.requiredOutputs", errUnknownOperation(op))
	}
}

// reorderOutputs locates each required output by structural equality
// and swaps it into its mandated position, per spec.md §4.4 step 4.
// Absence of a required output is a fatal assembly error
// (InvalidClaimTx): it means the wallet-funded transaction the caller
// handed back does not contain a burn output this core itself emitted
// in the Phase A skeleton.
func reorderOutputs(tx *elementstx.Transaction, required []*elementstx.TxOut) error {
	for pos, want := range required {
		found := -1
		for i, out := range tx.TxOut {
			if out.Equal(want) {
				found = i
				break
			}
		}
		if found == -1 {
			return olterrors.New(olterrors.InvalidClaimTx, "txbuilder.reorderOutputs",
				errMissingCommittedOutput(pos))
		}
		tx.TxOut[pos], tx.TxOut[found] = tx.TxOut[found], tx.TxOut[pos]
	}
	return nil
}

// checkOutputSize enforces the §3/§4.4 bound: the CompactSize-prefixed
// output vector (the vector's own length-count byte, then each
// serialized output) plus 24 bytes per non-null-nonce output must not
// exceed 521 bytes. The reference's own bound comment is explicit that
// the var-int length-encoding byte is baked into the 520+1 threshold,
// not folded into the per-output sum.
func checkOutputSize(tx *elementstx.Transaction) error {
	total := elementstx.VarIntLen(uint64(len(tx.TxOut)))
	confidentialCount := 0
	for _, out := range tx.TxOut {
		b, err := covenant.SerializeOutput(out)
		if err != nil {
			return err
		}
		total += len(b)
		if !out.Nonce.IsNull() {
			confidentialCount++
		}
	}
	total += confidentialCount * inflationPerConfidentialOutput

	if total > maxOutputsByteLen {
		return olterrors.New(olterrors.SizeLimitExceeded, "txbuilder.checkOutputSize",
			errOutputsTooLarge(total))
	}
	return nil
}

type unknownOperationError struct{ op Operation }

func (e unknownOperationError) Error() string { return "txbuilder: unknown operation " + e.op.String() }
func errUnknownOperation(op Operation) error  { return unknownOperationError{op: op} }

type confidentialClaimDestinationError struct{}

func (confidentialClaimDestinationError) Error() string {
	return "claimbene destination address must not be confidential"
}
func errConfidentialClaimDestination() error { return confidentialClaimDestinationError{} }

type missingCommittedOutputError struct{ position int }

func (e missingCommittedOutputError) Error() string {
	return "funded transaction is missing a required covenant output"
}
func errMissingCommittedOutput(position int) error {
	return missingCommittedOutputError{position: position}
}

type outputsTooLargeError struct{ size int }

func (e outputsTooLargeError) Error() string {
	return "committed output size exceeds the 520 byte limit; use a non-confidential destination"
}
func errOutputsTooLarge(size int) error { return outputsTooLargeError{size: size} }
