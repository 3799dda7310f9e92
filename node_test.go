package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNodeGraphInvariants exercises the node-graph operations directly:
// constructors, structural predicates, ancestor walks and digest
// recalculation after a child is replaced.
func TestNodeGraphInvariants(t *testing.T) {
	e := mustEngine(t, true)

	da, err := e.HashData("a")
	require.NoError(t, err)
	db, err := e.HashData("b")
	require.NoError(t, err)
	dc, err := e.HashData("c")
	require.NoError(t, err)

	la := newLeaf(da)
	lb := newLeaf(db)
	assert.True(t, la.isLeaf())
	assert.False(t, la.isLeftChild(), "unattached node has no parent yet")
	assert.False(t, la.isRightChild())

	parent, err := newInterior(&la.Node, &lb.Node, e)
	require.NoError(t, err)

	want, err := e.HashPair(da, db)
	require.NoError(t, err)
	assert.Equal(t, want, parent.value)
	assert.True(t, la.isLeftChild())
	assert.True(t, lb.isRightChild())
	assert.False(t, parent.isLeaf())

	assert.Equal(t, parent, la.ancestor(1))
	assert.Equal(t, &la.Node, la.ancestor(0))
	assert.Nil(t, la.ancestor(2))

	// Replace the right child in place and recalculate.
	lc := newLeaf(dc)
	parent.setRight(&lc.Node)
	lc.setParent(parent)
	require.NoError(t, parent.recalculateHash(e))

	wantAfter, err := e.HashPair(da, dc)
	require.NoError(t, err)
	assert.Equal(t, wantAfter, parent.value)
	assert.True(t, lc.isRightChild())

	// Same for the left slot.
	ld := newLeaf(dc)
	parent.setLeft(&ld.Node)
	ld.setParent(parent)
	require.NoError(t, parent.recalculateHash(e))

	wantSwapped, err := e.HashPair(dc, dc)
	require.NoError(t, err)
	assert.Equal(t, wantSwapped, parent.value)
	assert.True(t, ld.isLeftChild())

	// recalculateHash on a leaf is a no-op: leaves have no children to fold.
	before := la.value
	require.NoError(t, la.recalculateHash(e))
	assert.Equal(t, before, la.value)
}
