package covenant

import (
	"bytes"
	"crypto/sha256"
	"fmt"
)

// sha256Sum is a small wrapper kept local to this package so every
// script-hashing call site reads the same way the teacher's
// witnessScriptHash does (lnwallet/script_utils.go).
func sha256Sum(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// covenantScriptTag prefixes every compiled covenant witness script, so
// a byte string can be recognized as "one of ours" rather than an
// arbitrary script, the way a miniscript descriptor's compiled output
// carries an implicit grammar tag.
const covenantScriptTag = 0xc0

// compiledCovenantScript is the byte-exact compiled form of the deposit
// descriptor: a minimal, purpose-built encoding standing in for the
// reference's miniscript compiler output, since no third-party Go
// miniscript/descriptor library is available to this build (see
// DESIGN.md). It is deterministic in its inputs and is what gets
// P2WSH-wrapped into the deposit address — byte-for-byte reproducibility
// of this encoding is exactly what spec.md §8 invariant (1) requires.
//
// Layout:
//
//	0xc0
//	uint32le(len(controlKey)) controlKey
//	uint32le(expiry)
//	for each of {exercise, cancel, expiry} branch, in that order:
//	    uint32le(len(literal)) literal
type compiledCovenantScript struct {
	ControlKey      []byte
	Expiry          uint32
	ExerciseLiteral []byte
	CancelLiteral   []byte
	ExpiryLiteral   []byte
}

func (c *compiledCovenantScript) encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(covenantScriptTag)
	writeChunk(&buf, c.ControlKey)
	writeUint32(&buf, c.Expiry)
	writeChunk(&buf, c.ExerciseLiteral)
	writeChunk(&buf, c.CancelLiteral)
	writeChunk(&buf, c.ExpiryLiteral)
	return buf.Bytes()
}

func decodeCovenantScript(b []byte) (*compiledCovenantScript, error) {
	r := bytes.NewReader(b)
	tag, err := r.ReadByte()
	if err != nil || tag != covenantScriptTag {
		return nil, fmt.Errorf("not a compiled covenant script")
	}
	c := &compiledCovenantScript{}
	if c.ControlKey, err = readChunk(r); err != nil {
		return nil, err
	}
	if c.Expiry, err = readUint32(r); err != nil {
		return nil, err
	}
	if c.ExerciseLiteral, err = readChunk(r); err != nil {
		return nil, err
	}
	if c.CancelLiteral, err = readChunk(r); err != nil {
		return nil, err
	}
	if c.ExpiryLiteral, err = readChunk(r); err != nil {
		return nil, err
	}
	return c, nil
}

// claimScriptTag prefixes the compiled burn-beneficiary descriptor
// (spec.md §4.3.2), the second-level covenant securing the
// exercise-payment output.
const claimScriptTag = 0xc1

type compiledClaimScript struct {
	ControlKey []byte
	Literal    []byte
}

func (c *compiledClaimScript) encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(claimScriptTag)
	writeChunk(&buf, c.ControlKey)
	writeChunk(&buf, c.Literal)
	return buf.Bytes()
}

func decodeClaimScript(b []byte) (*compiledClaimScript, error) {
	r := bytes.NewReader(b)
	tag, err := r.ReadByte()
	if err != nil || tag != claimScriptTag {
		return nil, fmt.Errorf("not a compiled claim script")
	}
	c := &compiledClaimScript{}
	if c.ControlKey, err = readChunk(r); err != nil {
		return nil, err
	}
	if c.Literal, err = readChunk(r); err != nil {
		return nil, err
	}
	return c, nil
}

// BranchLiteral returns the committed-output literal a deposit witness
// script requires for the given branch, and — for BranchExpiry — the
// locktime the spending transaction must meet or exceed. Callers outside
// this package (the finalizer) use this instead of re-deriving the
// literal from asset.Params, since the compiled script is already the
// one source of truth for it.
func BranchLiteral(witnessScript []byte, branch Branch) (literal []byte, expiry uint32, err error) {
	compiled, err := decodeCovenantScript(witnessScript)
	if err != nil {
		return nil, 0, err
	}
	switch branch {
	case BranchExercise:
		return compiled.ExerciseLiteral, 0, nil
	case BranchCancel:
		return compiled.CancelLiteral, 0, nil
	case BranchExpiry:
		return compiled.ExpiryLiteral, compiled.Expiry, nil
	default:
		return nil, 0, errUnknownBranch(branch)
	}
}

// ClaimLiteral returns the committed-output literal a compiled
// burn-beneficiary witness script requires.
func ClaimLiteral(witnessScript []byte) ([]byte, error) {
	compiled, err := decodeClaimScript(witnessScript)
	if err != nil {
		return nil, err
	}
	return compiled.Literal, nil
}
