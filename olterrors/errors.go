// Package olterrors defines the exhaustive error taxonomy shared by the
// covenant, txbuilder, finalize, contract and config packages.
package olterrors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Kind tags an OpError with one of the six taxonomy classes the core can
// produce. Some lower-level errors (address encoding, script building,
// asset-ID parsing in the config parameter helpers) are returned as-is
// rather than wrapped in an OpError.
type Kind int

const (
	// ConfigInvalid marks a malformed asset ID, key, date, or amount in
	// configuration, surfaced at start-up.
	ConfigInvalid Kind = iota

	// ExpectedExplicitAsset marks a template or commitment site that
	// received a blinded asset where an explicit one is mandatory.
	ExpectedExplicitAsset

	// MiniscriptCompile marks a descriptor construction or address
	// derivation failure against a size or structural limit.
	MiniscriptCompile

	// InvalidClaimTx marks a funded transaction missing a required burn
	// output that Phase B must reorder.
	InvalidClaimTx

	// SizeLimitExceeded marks a violation of the 520-byte committed-
	// outputs bound.
	SizeLimitExceeded

	// SignerFailure marks a sighash or satisfier failure at finalization.
	SignerFailure
)

func (k Kind) String() string {
	switch k {
	case ConfigInvalid:
		return "ConfigInvalid"
	case ExpectedExplicitAsset:
		return "ExpectedExplicitAsset"
	case MiniscriptCompile:
		return "MiniscriptCompile"
	case InvalidClaimTx:
		return "InvalidClaimTx"
	case SizeLimitExceeded:
		return "SizeLimitExceeded"
	case SignerFailure:
		return "SignerFailure"
	default:
		return "UnknownError"
	}
}

// OpError is the concrete error type the core's operations use to tag a
// failure with its Kind. It never panics and never aborts the process
// itself; the thin outer CLI decides exit behavior.
type OpError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// New builds an OpError, wrapping the cause with a stack trace via
// go-errors when one is supplied so that callers propagating it past a
// component boundary keep the original call site.
func New(kind Kind, op string, cause error) *OpError {
	var wrapped error
	if cause != nil {
		wrapped = goerrors.WrapPrefix(cause, op, 1)
	}
	return &OpError{Kind: kind, Op: op, Err: wrapped}
}

// Is reports whether err is an *OpError of the given kind, unwrapping
// through go-errors.Error values along the way.
func Is(err error, kind Kind) bool {
	for err != nil {
		if oe, ok := err.(*OpError); ok {
			return oe.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
