package covenant

import (
	"github.com/lightninglabs/elopt/asset"
	"github.com/lightninglabs/elopt/elementstx"
)

// Branch tags the three mutually exclusive unlock paths of the deposit
// descriptor (spec.md §4.3.1). Representing the branches as a type-level
// variant — rather than re-deriving the committed output list separately
// in descriptor construction and in transaction assembly — is what keeps
// spec.md §8 invariant (1) structurally obvious: both the descriptor and
// the assembler call CommittedOutputs for the same Branch value.
type Branch int

const (
	// BranchExercise is satisfied when the spending transaction's
	// outputs begin with burn_option, exercise_payment.
	BranchExercise Branch = iota

	// BranchCancel is satisfied when the spending transaction's outputs
	// begin with burn_option, burn_beneficiary_wrapped.
	BranchCancel

	// BranchExpiry is satisfied when the absolute locktime is at or
	// past expiry and the spending transaction's outputs begin with
	// burn_beneficiary. The expiry skeleton sets locktime to expiry+1.
	BranchExpiry
)

func (b Branch) String() string {
	switch b {
	case BranchExercise:
		return "exercise"
	case BranchCancel:
		return "cancel"
	case BranchExpiry:
		return "expiry"
	default:
		return "unknown"
	}
}

// CommittedOutputs returns, in covenant order, the outputs the named
// branch commits the spending transaction's output prefix to. Index 0
// of the returned slice must land at output index 0 of the spending
// transaction, index 1 at output index 1, and so on (spec.md §4.3.1).
func CommittedOutputs(branch Branch, controlKey []byte, locked, claim asset.Params) ([]*elementstx.TxOut, error) {
	switch branch {
	case BranchExercise:
		burnOpt, err := BurnOption(claim)
		if err != nil {
			return nil, err
		}
		exercisePayment, _, err := ExercisePayment(controlKey, locked, claim)
		if err != nil {
			return nil, err
		}
		return []*elementstx.TxOut{burnOpt, exercisePayment}, nil

	case BranchCancel:
		burnOpt, err := BurnOption(claim)
		if err != nil {
			return nil, err
		}
		burnBeneWrapped, err := BurnBeneficiaryWrapped(locked)
		if err != nil {
			return nil, err
		}
		return []*elementstx.TxOut{burnOpt, burnBeneWrapped}, nil

	case BranchExpiry:
		burnBene, err := BurnBeneficiary(locked)
		if err != nil {
			return nil, err
		}
		return []*elementstx.TxOut{burnBene}, nil

	default:
		return nil, errUnknownBranch(branch)
	}
}

type unknownBranchError struct{ branch Branch }

func (e unknownBranchError) Error() string {
	return "covenant: unknown branch " + e.branch.String()
}

func errUnknownBranch(branch Branch) error {
	return unknownBranchError{branch: branch}
}
