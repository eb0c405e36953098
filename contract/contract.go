// Package contract is the top-level orchestrator: it ties the
// configuration, the covenant descriptor builder, the transaction
// assembler, and the finalizer together into the four user-facing
// operations a call-option contract supports (spec.md §1-2). It holds
// no state beyond the immutable contract parameters themselves
// (spec.md §9, "Ownership").
package contract

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/elopt/asset"
	"github.com/lightninglabs/elopt/covenant"
	"github.com/lightninglabs/elopt/elementstx"
	"github.com/lightninglabs/elopt/finalize"
	"github.com/lightninglabs/elopt/olterrors"
	"github.com/lightninglabs/elopt/txbuilder"
)

// OptionContract is the immutable record of spec.md §3: expiry, the two
// AssetParams sides, and the control keypair. It has no outgoing
// references and is safe to pass by value or by shared read-only
// handle.
type OptionContract struct {
	Expiry        uint32
	Locked        asset.Params
	Claim         asset.Params
	ControlPubKey []byte
	controlPriv   *btcec.PrivateKey
}

// New builds an OptionContract. controlPriv may be nil for read-only
// operations (DepositAddress, BuildSkeleton, Splice); it is required
// for Finalize.
func New(expiry uint32, locked, claim asset.Params, controlPubKey []byte, controlPriv *btcec.PrivateKey) *OptionContract {
	return &OptionContract{
		Expiry:        expiry,
		Locked:        locked,
		Claim:         claim,
		ControlPubKey: controlPubKey,
		controlPriv:   controlPriv,
	}
}

// DepositAddress derives the bech32 deposit address under the given
// network's address parameters (spec.md §4.3.3).
func (c *OptionContract) DepositAddress(network covenant.Network) (string, error) {
	desc, err := covenant.DepositDescriptor(c.ControlPubKey, c.Expiry, c.Locked, c.Claim)
	if err != nil {
		return "", err
	}
	return network.Address(desc)
}

// depositDescriptor recompiles the deposit descriptor; called by every
// operation that needs either the descriptor or its scriptPubKey.
func (c *OptionContract) depositDescriptor() (*covenant.Descriptor, error) {
	return covenant.DepositDescriptor(c.ControlPubKey, c.Expiry, c.Locked, c.Claim)
}

// claimDescriptor recompiles the burn-beneficiary descriptor guarding
// the exercise-payment output.
func (c *OptionContract) claimDescriptor() (*covenant.Descriptor, error) {
	_, desc, err := covenant.BurnBeneficiaryDescriptor(c.ControlPubKey, c.Locked)
	return desc, err
}

// BuildSkeleton returns the Phase A skeleton for op (spec.md §4.4).
func (c *OptionContract) BuildSkeleton(op txbuilder.Operation) (*elementstx.Transaction, error) {
	return txbuilder.BuildSkeleton(op, c.ControlPubKey, c.Expiry, c.Locked, c.Claim)
}

// Splice performs Phase B on a wallet-funded transaction (spec.md §4.4
// steps 1-5).
func (c *OptionContract) Splice(op txbuilder.Operation, tx *elementstx.Transaction, prevout wire.OutPoint, dest txbuilder.Destination) error {
	return txbuilder.Splice(op, tx, c.ControlPubKey, prevout, dest, c.Expiry, c.Locked, c.Claim)
}

// Finalize signs and finalizes the covenant input of tx — conventionally
// its last input, per the assembly invariant of spec.md §4.5 step 1 —
// and returns the broadcastable transaction.
func (c *OptionContract) Finalize(op txbuilder.Operation, tx *elementstx.Transaction) (*elementstx.Transaction, error) {
	if c.controlPriv == nil {
		return nil, olterrors.New(olterrors.SignerFailure, "contract.Finalize", errNoControlKey())
	}
	inputIndex := len(tx.TxIn) - 1
	if inputIndex < 0 {
		return nil, olterrors.New(olterrors.InvalidClaimTx, "contract.Finalize", errNoCovenantInput())
	}
	log.Infof("finalizing %s operation on covenant input %d", op, inputIndex)
	privBytes := c.controlPriv.Serialize()

	if op == txbuilder.OpClaimBenefit {
		desc, err := c.claimDescriptor()
		if err != nil {
			return nil, err
		}
		spentValue := elementstx.ExplicitValue(c.Claim.Value)
		return finalize.FinalizeClaim(tx, inputIndex, desc, spentValue, privBytes)
	}

	desc, err := c.depositDescriptor()
	if err != nil {
		return nil, err
	}
	branch, err := branchForOp(op)
	if err != nil {
		return nil, err
	}
	spentValue := elementstx.ExplicitValue(c.Locked.Value)
	return finalize.FinalizeDeposit(tx, inputIndex, branch, desc, spentValue, privBytes)
}

func branchForOp(op txbuilder.Operation) (covenant.Branch, error) {
	switch op {
	case txbuilder.OpExercise:
		return covenant.BranchExercise, nil
	case txbuilder.OpCancel:
		return covenant.BranchCancel, nil
	case txbuilder.OpExpiry:
		return covenant.BranchExpiry, nil
	default:
		return 0, olterrors.New(olterrors.MiniscriptCompile, "contract.branchForOp", errUnsupportedOp(op))
	}
}

// AssetCommitmentList builds the human-readable asset-commitment list
// the host wallet's blindrawtransaction call expects: the given asset
// generator (the CLI passes the asset of the manually added input)
// repeated once per input of the funded transaction. It depends on no
// contract state, only the funded transaction's input count.
//
// The reference appends totalInputs-1 copies inside its loop and then
// one more after it, for a total of totalInputs entries — this core
// reproduces that exact count rather than "fixing" what looks like an
// off-by-one, per the documented decision in SPEC_FULL.md's Open
// Questions section.
func AssetCommitmentList(btcAssetGenerator string, totalInputs int) []string {
	if totalInputs < 0 {
		totalInputs = 0
	}
	list := make([]string, 0, totalInputs)
	for i := 0; i < totalInputs; i++ {
		list = append(list, btcAssetGenerator)
	}
	return list
}

type noControlKeyError struct{}

func (noControlKeyError) Error() string { return "contract: no control private key configured" }
func errNoControlKey() error            { return noControlKeyError{} }

type noCovenantInputError struct{}

func (noCovenantInputError) Error() string { return "contract: transaction has no covenant input to finalize" }
func errNoCovenantInput() error            { return noCovenantInputError{} }

type unsupportedOpError struct{ op txbuilder.Operation }

func (e unsupportedOpError) Error() string {
	return "contract: operation " + e.op.String() + " does not spend the deposit descriptor"
}
func errUnsupportedOp(op txbuilder.Operation) error { return unsupportedOpError{op: op} }
