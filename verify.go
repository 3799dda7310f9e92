package merkle

import "crypto/subtle"

// Verifier validates proofs produced by a Tree. It is stateless and pure:
// it holds no reference to any tree and may be shared freely. The only
// thing it ever writes is the Status marker on the proof under validation.
type Verifier struct{}

// NewVerifier returns a stateless Verifier.
func NewVerifier() *Verifier { return &Verifier{} }

// ValidateProof folds the proof's path through a hash engine configured
// from the proof's own header and compares the result against targetRoot.
// For audit proofs targetRoot is the provider tree's current root. The
// proof's Status is set as a side effect.
func (v *Verifier) ValidateProof(targetRoot []byte, proof *Proof) (bool, error) {
	if !foldable(proof) {
		proof.Header.Status = StatusInvalid
		return false, nil
	}

	engine, err := NewHashEngine(proof.Header.Algorithm, proof.Header.Encoding, proof.Header.Security)
	if err != nil {
		return false, err
	}

	got, err := engine.HashPath(proof.Body.Path, proof.Body.Offset)
	if err != nil {
		return false, err
	}

	valid := digestsEqual(got, targetRoot)
	if valid {
		proof.Header.Status = StatusValid
	} else {
		proof.Header.Status = StatusInvalid
	}
	return valid, nil
}

// ValidateConsistencyProof checks both folds a consistency proof must
// satisfy: the full path folds to currentRoot, and the leading offset+1
// entries (the principal subtree roots of the committed prefix) fold to
// priorRoot. Both must hold for the proof to be valid.
func (v *Verifier) ValidateConsistencyProof(currentRoot, priorRoot []byte, proof *Proof) (bool, error) {
	if !foldable(proof) {
		proof.Header.Status = StatusInvalid
		return false, nil
	}

	engine, err := NewHashEngine(proof.Header.Algorithm, proof.Header.Encoding, proof.Header.Security)
	if err != nil {
		return false, err
	}

	full, err := engine.HashPath(proof.Body.Path, proof.Body.Offset)
	if err != nil {
		return false, err
	}
	if !digestsEqual(full, currentRoot) {
		proof.Header.Status = StatusInvalid
		return false, nil
	}

	sub := proof.Body.Path[:proof.Body.Offset+1]
	subFold, err := engine.HashPath(sub, proof.Body.Offset)
	if err != nil {
		return false, err
	}
	if !digestsEqual(subFold, priorRoot) {
		proof.Header.Status = StatusInvalid
		return false, nil
	}

	proof.Header.Status = StatusValid
	return true, nil
}

func foldable(p *Proof) bool {
	return len(p.Body.Path) > 0 && p.Body.Offset >= 0 && p.Body.Offset < len(p.Body.Path)
}

// digestsEqual compares two digests in constant time.
func digestsEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
