package merkle

// This file builds the two signed paths the hash engine's HashPath folds
// over: audit (inclusion) paths and consistency (append-only) paths. Both
// are expressed over the current node graph.
//
// An entry's sign is not the entry's own position but the position of the
// subtree the fold occupies after consuming it: the anchor carries its own
// child position, while every sibling carries the position of the parent
// it hangs off. HashPath propagates these signs through its merges, so the
// reduction retraces the leaf-to-root combination order exactly.

// signedPath climbs from anchor to the root, assembling the signed digest
// sequence that folds back to the root. Climbing through a left child
// appends the right sibling to the back; climbing through a right child
// prepends the left sibling to the front. offset tracks the anchor's own
// index as the sequence grows in either direction.
func signedPath(anchor *Node) ([]SignedDigest, int) {
	sign := Left
	if anchor.isRightChild() {
		sign = Right
	}
	path := []SignedDigest{{Sign: sign, Digest: anchor.value}}
	offset := 0

	cur := anchor
	for cur.parent != nil {
		p := cur.parent
		if cur.isLeftChild() {
			sign := Right
			if p.isLeftChild() {
				sign = Left
			}
			path = append(path, SignedDigest{Sign: sign, Digest: p.right.value})
		} else {
			sign := Left
			if p.isRightChild() {
				sign = Right
			}
			path = append([]SignedDigest{{Sign: sign, Digest: p.left.value}}, path...)
			offset++
		}
		cur = p
	}
	return path, offset
}

// GenerateAuditProof locates the earliest leaf (in insertion order) whose
// digest equals challenge and returns an inclusion proof for it. If no
// leaf matches, a failure proof is returned (generation=false, empty path,
// offset=-1) rather than an error, so the rejection can travel as data.
func (t *Tree) GenerateAuditProof(challenge []byte) (*Proof, error) {
	if t.root == nil {
		return nil, ErrEmptyTree
	}

	_, leaf := t.findLeafByDigest(challenge)
	if leaf == nil {
		t.logger.Debug().Msg("audit challenge matched no leaf")
		return failureProof(t), nil
	}

	path, offset := signedPath(&leaf.Node)

	t.logger.Debug().Int("path_len", len(path)).Msg("generated audit proof")

	return newProof(t, true, offset, path), nil
}

// GenerateAuditProofForIndex is the leaf-index form of the audit
// challenge: it proves inclusion of the index-th appended record. An out
// of range index yields a failure proof.
func (t *Tree) GenerateAuditProofForIndex(index int) (*Proof, error) {
	if t.root == nil {
		return nil, ErrEmptyTree
	}
	if index < 0 || index >= len(t.leaves) {
		t.logger.Debug().Int("index", index).Msg("audit index out of range")
		return failureProof(t), nil
	}

	path, offset := signedPath(&t.leaves[index].Node)
	return newProof(t, true, offset, path), nil
}

// staticHash recomputes the Merkle root of an arbitrary slice of leaf
// digests, following the recursive largest-power-of-two split the tree
// shape is defined by. Used to locate the prior length a consistency
// challenge refers to, where no incremental structure applies.
func staticHash(engine *HashEngine, digests [][]byte) ([]byte, error) {
	n := len(digests)
	if n == 0 {
		return nil, ErrEmptyTree
	}
	if n == 1 {
		return digests[0], nil
	}
	k := largestPowerOf2LessThan(n)
	left, err := staticHash(engine, digests[:k])
	if err != nil {
		return nil, err
	}
	right, err := staticHash(engine, digests[k:])
	if err != nil {
		return nil, err
	}
	return engine.HashPair(left, right)
}

func largestPowerOf2LessThan(n int) int {
	if n < 2 {
		return 0
	}
	t := 1
	for t<<1 < n {
		t <<= 1
	}
	return t
}

func log2(n int) int {
	h := 0
	for (1 << uint(h)) < n {
		h++
	}
	return h
}

// GenerateConsistencyProof scans prior lengths m = 1..n for the one whose
// root equals oldRoot and proves that the current tree extends it. An
// unmatched challenge yields a failure proof.
func (t *Tree) GenerateConsistencyProof(oldRoot []byte) (*Proof, error) {
	if t.root == nil {
		return nil, ErrEmptyTree
	}

	n := len(t.leaves)
	digests := t.leafDigests()

	for m := 1; m <= n; m++ {
		h, err := staticHash(t.engine, digests[:m])
		if err != nil {
			return nil, err
		}
		if bytesEqual(h, oldRoot) {
			return t.consistencyProof(m)
		}
	}

	t.logger.Debug().Msg("consistency challenge matched no prior length")
	return failureProof(t), nil
}

// GenerateConsistencyProofWithLength is the known-length form of the
// consistency challenge: the caller asserts that oldRoot was the
// commitment at sublength appends. A mismatched pair yields a failure
// proof, same as an unmatched scan.
func (t *Tree) GenerateConsistencyProofWithLength(oldRoot []byte, sublength int) (*Proof, error) {
	if t.root == nil {
		return nil, ErrEmptyTree
	}
	if sublength < 1 || sublength > len(t.leaves) {
		return failureProof(t), nil
	}

	h, err := staticHash(t.engine, t.leafDigests()[:sublength])
	if err != nil {
		return nil, err
	}
	if !bytesEqual(h, oldRoot) {
		t.logger.Debug().Int("sublength", sublength).Msg("consistency challenge does not match sublength root")
		return failureProof(t), nil
	}
	return t.consistencyProof(sublength)
}

// consistencyProof builds the proof for the committed prefix of length m,
// 1 <= m <= length. The anchor is the node whose subtree is the smallest
// principal piece of m's power-of-two decomposition: climbing from there,
// the prepended left siblings are precisely the larger principals (their
// combination is the prior root) and the appended right siblings are the
// material added after the prefix. The same sequence therefore folds to
// the current root from offset, and to the prior root over its first
// offset+1 entries.
func (t *Tree) consistencyProof(m int) (*Proof, error) {
	smallest := m & -m
	anchor := (&t.leaves[m-1].Node).ancestor(log2(smallest))
	if anchor == nil {
		return failureProof(t), nil
	}

	path, offset := signedPath(anchor)

	t.logger.Debug().Int("prior_length", m).Int("path_len", len(path)).Msg("generated consistency proof")

	return newProof(t, true, offset, path), nil
}
