// Package merkle implements an append-only Merkle tree with audit
// (inclusion) and consistency (append-only) proofs.
//
// The tree shape follows RFC 6962 (https://tools.ietf.org/html/rfc6962#section-2.1):
// for n leaves, let k be the largest power of two smaller than n; the tree
// is then the perfect subtree over the first k leaves combined with the
// recursively-shaped tree over the remaining n-k leaves. Unlike a
// from-scratch recompute, this package maintains that shape incrementally
// as records are appended, reusing every perfect-subtree node across
// appends and only rebuilding the O(log n) connector nodes on the right
// spine.
package merkle

import (
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Tree is a single-writer, append-only Merkle tree. Operations touching
// tree state (Update, GenerateAuditProof, GenerateConsistencyProof) are
// not internally synchronized: callers running more than one goroutine
// against the same Tree must serialize access themselves, matching the
// single-writer resource model this package is built for.
type Tree struct {
	id     uuid.UUID
	engine *HashEngine

	spine []*Node // spine[i]: root of a closed perfect subtree of size 2^i, or nil
	root  *Node

	leaves   []*Leaf
	headLeaf *Leaf
	tailLeaf *Leaf

	logger zerolog.Logger
}

// NewTree constructs an empty tree. Default configuration is SHA-256,
// utf-8 encoding, security mode on; override with Option values.
func NewTree(opts ...Option) (*Tree, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	engine, err := NewHashEngine(cfg.algorithm, cfg.encoding, cfg.security)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}

	return &Tree{
		id:     id,
		engine: engine,
		logger: log.With().Str("tree", id.String()).Logger(),
	}, nil
}

// ID returns the tree's identity, used as the Proof header's provider field.
func (t *Tree) ID() string { return t.id.String() }

// Engine exposes the tree's hash engine for collaborators (proofjson,
// verifiers) that need the same algorithm/encoding/security configuration.
func (t *Tree) Engine() *HashEngine { return t.engine }

// Length returns the number of appended records.
func (t *Tree) Length() int64 { return int64(len(t.leaves)) }

// Size returns the total node count: 2*length-1 for a nonempty tree.
func (t *Tree) Size() int64 {
	n := t.Length()
	if n == 0 {
		return 0
	}
	return 2*n - 1
}

// Height returns ceil(log2(length)).
func (t *Tree) Height() int {
	n := t.Length()
	if n <= 1 {
		return 0
	}
	h := 0
	for (int64(1) << uint(h)) < n {
		h++
	}
	return h
}

// RootHash returns the current root digest. Fails on an empty tree.
func (t *Tree) RootHash() ([]byte, error) {
	if t.root == nil {
		return nil, ErrEmptyTree
	}
	return t.root.value, nil
}

// Update appends one record (bytes or string) to the tree: the new leaf
// carries up the right spine, fusing with equal-sized perfect subtrees
// until it lands on an empty slot, and the connector chain above that
// slot is recomputed.
func (t *Tree) Update(record interface{}) error {
	leaf, err := leafFromData(record, t.engine)
	if err != nil {
		return err
	}
	return t.appendLeaf(leaf)
}

// UpdateFile appends one record holding the digest of the named file's
// contents, streamed through the engine's configured algorithm.
func (t *Tree) UpdateFile(path string) error {
	leaf, err := leafFromFile(path, t.engine)
	if err != nil {
		return err
	}
	return t.appendLeaf(leaf)
}

func (t *Tree) appendLeaf(leaf *Leaf) error {
	if t.tailLeaf != nil {
		t.tailLeaf.setNext(leaf)
	} else {
		t.headLeaf = leaf
	}
	t.tailLeaf = leaf
	t.leaves = append(t.leaves, leaf)

	carry := &leaf.Node
	level := 0
	for level < len(t.spine) && t.spine[level] != nil {
		merged, err := newInterior(t.spine[level], carry, t.engine)
		if err != nil {
			return err
		}
		t.spine[level] = nil
		carry = merged
		level++
	}
	if level == len(t.spine) {
		t.spine = append(t.spine, carry)
	} else {
		t.spine[level] = carry
	}

	root, err := t.combineSpine()
	if err != nil {
		return err
	}
	t.root = root

	t.logger.Debug().
		Int64("length", t.Length()).
		Str("root", hex.EncodeToString(root.value)).
		Msg("appended record")

	return nil
}

// combineSpine folds the occupied spine entries, smallest level first, into
// a single root node: the largest perfect subtree always ends up the
// left child of the combination nearest the root, matching R(n) =
// H(R_perfect(p), R(n-p)).
func (t *Tree) combineSpine() (*Node, error) {
	var acc *Node
	for i := 0; i < len(t.spine); i++ {
		s := t.spine[i]
		if s == nil {
			continue
		}
		if acc == nil {
			acc = s
			continue
		}
		combined, err := newInterior(s, acc, t.engine)
		if err != nil {
			return nil, err
		}
		acc = combined
	}
	return acc, nil
}

func (t *Tree) leafDigests() [][]byte {
	digests := make([][]byte, len(t.leaves))
	for i, l := range t.leaves {
		digests[i] = l.value
	}
	return digests
}

func (t *Tree) findLeafByDigest(challenge []byte) (int, *Leaf) {
	for i, l := range t.leaves {
		if bytesEqual(l.value, challenge) {
			return i, l
		}
	}
	return -1, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
