/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: node_test.go
Description: Tests for the derivation forest. Covers yields, single-occurrence substitution,
cloning, bubbling, relabeling with self-indirection collapse, and the leaf-partition
invariant.
*/

package tree_test

import (
	"testing"

	"github.com/rifatarefin/arvada/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSumTree builds a forest for the single example "1+1" shaped as
// t0[t1[t2["1"] t3["+"] t2["1"]]] and returns it with the inner node id.
func buildSumTree(t *testing.T) (*tree.Forest, tree.NodeID) {
	t.Helper()
	f := tree.NewForest([]string{"1+1"})

	one1 := f.AddTerminal("1", 0, 0)
	plus := f.AddTerminal("+", 0, 1)
	one2 := f.AddTerminal("1", 0, 2)

	d1 := f.AddInternal("t2", 0, []tree.NodeID{one1})
	op := f.AddInternal("t3", 0, []tree.NodeID{plus})
	d2 := f.AddInternal("t2", 0, []tree.NodeID{one2})

	inner := f.AddInternal("t1", 0, []tree.NodeID{d1, op, d2})
	root := f.AddInternal("t0", 0, []tree.NodeID{inner})
	f.AddRoot(root)

	require.NoError(t, f.CheckPartition())
	return f, inner
}

// TestForestYield tests that yields reconstruct the covered substring
func TestForestYield(t *testing.T) {
	f, inner := buildSumTree(t)

	assert.Equal(t, "1+1", f.Yield(f.Roots()[0]))
	assert.Equal(t, "1+1", f.Yield(inner))
}

// TestYieldWithNodeReplaced tests the cross-substitution primitive
func TestYieldWithNodeReplaced(t *testing.T) {
	f, _ := buildSumTree(t)
	root := f.Roots()[0]

	digits := f.ClassNodes(root, "t2")
	require.Len(t, digits, 2)

	// One occurrence swaps at a time, the other keeps its own yield
	assert.Equal(t, "9+1", f.YieldWithNodeReplaced(root, digits[0], "9"))
	assert.Equal(t, "1+9", f.YieldWithNodeReplaced(root, digits[1], "9"))

	ops := f.ClassNodes(root, "t3")
	require.Len(t, ops, 1)
	assert.Equal(t, "1-1", f.YieldWithNodeReplaced(root, ops[0], "-"))

	// Replacing the root itself yields the replacement alone
	assert.Equal(t, "x", f.YieldWithNodeReplaced(root, root, "x"))
}

// TestClassNodesReportsNestedOccurrences tests preorder class collection
func TestClassNodesReportsNestedOccurrences(t *testing.T) {
	f := tree.NewForest([]string{"ab"})

	la := f.AddTerminal("a", 0, 0)
	lb := f.AddTerminal("b", 0, 1)
	innerB := f.AddInternal("t1", 0, []tree.NodeID{lb})
	root := f.AddInternal("t1", 0, []tree.NodeID{la, innerB})
	f.AddRoot(root)

	nodes := f.ClassNodes(root, "t1")
	require.Len(t, nodes, 2)
	assert.Equal(t, root, nodes[0], "preorder puts the outer occurrence first")
	assert.Equal(t, innerB, nodes[1])
}

// TestTerminalNodes tests leaf lookup by exact text
func TestTerminalNodes(t *testing.T) {
	f, _ := buildSumTree(t)
	root := f.Roots()[0]

	ones := f.TerminalNodes(root, "1")
	require.Len(t, ones, 2)
	assert.Equal(t, "9+1", f.YieldWithNodeReplaced(root, ones[0], "9"))
	assert.Equal(t, "1+9", f.YieldWithNodeReplaced(root, ones[1], "9"))

	assert.Len(t, f.TerminalNodes(root, "+"), 1)
	assert.Empty(t, f.TerminalNodes(root, "1+1"), "only whole-leaf matches count")
}

// TestContainsClassAndDerivableStrings tests subtree class queries
func TestContainsClassAndDerivableStrings(t *testing.T) {
	f, _ := buildSumTree(t)
	root := f.Roots()[0]

	assert.True(t, f.ContainsClass(root, "t2"))
	assert.True(t, f.ContainsClass(root, "t1"))
	assert.False(t, f.ContainsClass(root, "t9"))

	derived := make(map[string]struct{})
	f.DerivableStrings(root, "t2", derived)
	assert.Equal(t, map[string]struct{}{"1": {}}, derived)

	derived = make(map[string]struct{})
	f.DerivableStrings(root, "t1", derived)
	assert.Equal(t, map[string]struct{}{"1+1": {}}, derived)
}

// TestDerivableStringsIncludesNestedOccurrences tests that inner
// occurrences of a class contribute their own yields
func TestDerivableStringsIncludesNestedOccurrences(t *testing.T) {
	f := tree.NewForest([]string{"ab"})

	la := f.AddTerminal("a", 0, 0)
	lb := f.AddTerminal("b", 0, 1)
	innerB := f.AddInternal("t1", 0, []tree.NodeID{lb})
	root := f.AddInternal("t1", 0, []tree.NodeID{la, innerB})
	f.AddRoot(root)

	derived := make(map[string]struct{})
	f.DerivableStrings(root, "t1", derived)
	assert.Equal(t, map[string]struct{}{"ab": {}, "b": {}}, derived)
}

// TestForestClone tests that clones are fully independent
func TestForestClone(t *testing.T) {
	f, _ := buildSumTree(t)
	before := f.String()

	c := f.Clone()
	c.Relabel(map[string]string{"t2": "t7"})

	assert.Equal(t, before, f.String(), "mutating the clone must not touch the original")
	assert.True(t, c.ContainsClass(c.Roots()[0], "t7"))
	assert.False(t, f.ContainsClass(f.Roots()[0], "t7"))
	require.NoError(t, c.CheckPartition())
}

// TestBubbleSequence tests wrapping repeated sibling sequences
func TestBubbleSequence(t *testing.T) {
	f := tree.NewForest([]string{"abab"})

	var children []tree.NodeID
	for i, r := range "abab" {
		leaf := f.AddTerminal(string(r), 0, i)
		children = append(children, f.AddInternal("t"+string(r), 0, []tree.NodeID{leaf}))
	}
	inner := f.AddInternal("t1", 0, children)
	root := f.AddInternal("t0", 0, []tree.NodeID{inner})
	f.AddRoot(root)

	created := f.BubbleSequence([]string{"ta", "tb"}, "t5")
	require.Len(t, created, 2, "both occurrences of the pair must be wrapped")

	for _, id := range created {
		assert.Equal(t, "t5", f.Node(id).Label)
		assert.Equal(t, "ab", f.Yield(id))
	}
	assert.Len(t, f.Node(inner).Children, 2)
	require.NoError(t, f.CheckPartition())
}

// TestRelabelCollapsesSelfIndirection tests the tx -> tx fixup after coalescing
func TestRelabelCollapsesSelfIndirection(t *testing.T) {
	f := tree.NewForest([]string{"x"})

	leaf := f.AddTerminal("x", 0, 0)
	innerMost := f.AddInternal("t2", 0, []tree.NodeID{leaf})
	mid := f.AddInternal("t1", 0, []tree.NodeID{innerMost})
	root := f.AddInternal("t0", 0, []tree.NodeID{mid})
	f.AddRoot(root)

	f.Relabel(map[string]string{"t2": "t1"})

	// t1[t1["x"]] collapses to t1["x"]
	n := f.Node(mid)
	require.Len(t, n.Children, 1)
	assert.True(t, f.Node(n.Children[0]).Terminal)
	require.NoError(t, f.CheckPartition())
}

// TestCheckPartitionDetectsCorruption tests the strict-partition invariant
func TestCheckPartitionDetectsCorruption(t *testing.T) {
	f := tree.NewForest([]string{"ab"})

	leaf := f.AddTerminal("a", 0, 0) // drops the "b"
	root := f.AddInternal("t0", 0, []tree.NodeID{leaf})
	f.AddRoot(root)

	assert.Error(t, f.CheckPartition())
}

// TestAllocatorFresh tests sequential class id allocation
func TestAllocatorFresh(t *testing.T) {
	alloc := tree.NewAllocator()
	assert.Equal(t, "t0", alloc.Fresh())
	assert.Equal(t, "t1", alloc.Fresh())
	assert.Equal(t, 2, alloc.Count())
}
