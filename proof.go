package merkle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidationStatus mirrors the proof header's status field: unknown until
// a verifier runs, then valid or invalid.
type ValidationStatus int

const (
	StatusUnknown ValidationStatus = iota
	StatusValid
	StatusInvalid
)

func (s ValidationStatus) String() string {
	switch s {
	case StatusValid:
		return "VALID"
	case StatusInvalid:
		return "NON VALID"
	default:
		return "UNVALIDATED"
	}
}

// ProofHeader carries the provenance and configuration needed to
// reconstruct and validate a Proof without consulting the tree that made
// it.
type ProofHeader struct {
	UUID           string
	Timestamp      int64
	CreationMoment string
	Generation     bool
	Provider       string
	Algorithm      Algorithm
	Encoding       TextEncoding
	Security       bool
	Status         ValidationStatus
}

// ProofBody holds the fold input: the signed digest sequence and the
// offset the reduction proceeds from. For consistency proofs the first
// offset+1 entries are the principal subtree roots whose combination is
// the prior commitment, so no separate boundary marker is carried.
type ProofBody struct {
	Offset int
	Path   []SignedDigest
}

// Proof is an immutable value produced by a Tree. It owns only primitive
// data (copies of digests and signs) and holds no reference back to the
// tree that produced it.
type Proof struct {
	Header ProofHeader
	Body   ProofBody
}

func newProof(t *Tree, generation bool, offset int, path []SignedDigest) *Proof {
	id, err := uuid.NewUUID()
	if err != nil {
		id = uuid.New()
	}
	now := time.Now()

	return &Proof{
		Header: ProofHeader{
			UUID:           id.String(),
			Timestamp:      now.Unix(),
			CreationMoment: now.Format(time.ANSIC),
			Generation:     generation,
			Provider:       t.ID(),
			Algorithm:      t.engine.Algorithm(),
			Encoding:       t.engine.Encoding(),
			Security:       t.engine.Security(),
			Status:         StatusUnknown,
		},
		Body: ProofBody{
			Offset: offset,
			Path:   path,
		},
	}
}

// failureProof is returned when a challenge has no matching leaf/subtree:
// generation=false, empty path, offset=-1. It is a valid Proof object that
// any verifier will reject, not an error.
func failureProof(t *Tree) *Proof {
	return newProof(t, false, -1, nil)
}

// String renders a human-readable summary, grounded on pymerkle's
// Proof.__repr__. Not meant to round-trip; use the proofjson collaborator
// package for serialization.
func (p *Proof) String() string {
	generation := "FAILURE"
	if p.Header.Generation {
		generation = "SUCCESS"
	}
	return fmt.Sprintf(
		"PROOF uuid=%s generation=%s provider=%s algorithm=%s encoding=%s security=%v offset=%d path_len=%d status=%s",
		p.Header.UUID, generation, p.Header.Provider, p.Header.Algorithm, p.Header.Encoding,
		p.Header.Security, p.Body.Offset, len(p.Body.Path), p.Header.Status,
	)
}
