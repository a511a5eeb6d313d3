/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: extractor_test.go
Description: Tests for grammar extraction. Covers alternative deduplication, the
synthetic start class for mixed-label roots, and dangling-reference detection.
*/

package engine

import (
	"testing"

	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractDeduplicatesAlternatives tests flattening the forest into
// a deduplicated rule set
func TestExtractDeduplicatesAlternatives(t *testing.T) {
	f := buildPairForest(t)
	alloc := tree.NewAllocator()

	g, err := Extract(f, alloc)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, "t0", g.Start)
	// Both roots contribute the same shape, kept once
	require.Len(t, g.Rules["t0"], 1)
	assert.Equal(t, grammar.Alternative{
		grammar.Class("t1"), grammar.Class("t2"), grammar.Class("t1"),
	}, g.Rules["t0"][0])

	// "1" occurs twice in the forest but once in the rule set
	assert.Len(t, g.Rules["t1"], 3)
	assert.Len(t, g.Rules["t2"], 1)
}

// TestExtractSyntheticStart tests that mixed root labels get a fresh
// start class with one alternative per label
func TestExtractSyntheticStart(t *testing.T) {
	f := tree.NewForest([]string{"a", "b"})
	f.AddRoot(f.AddInternal("t1", 0, []tree.NodeID{f.AddTerminal("a", 0, 0)}))
	f.AddRoot(f.AddInternal("t2", 1, []tree.NodeID{f.AddTerminal("b", 1, 0)}))
	require.NoError(t, f.CheckPartition())

	alloc := tree.NewAllocator()
	for i := 0; i < 3; i++ {
		alloc.Fresh() // t0..t2 are taken by the forest labels
	}

	g, err := Extract(f, alloc)
	require.NoError(t, err)
	assert.Equal(t, "t3", g.Start)
	require.Len(t, g.Rules["t3"], 2)
	assert.Equal(t, grammar.Alternative{grammar.Class("t1")}, g.Rules["t3"][0])
	assert.Equal(t, grammar.Alternative{grammar.Class("t2")}, g.Rules["t3"][1])
}

// TestExtractDetectsDanglingReferences tests the fatal corruption path
func TestExtractDetectsDanglingReferences(t *testing.T) {
	f := tree.NewForest([]string{"x"})
	empty := f.AddInternal("t1", 0, nil)
	leaf := f.AddTerminal("x", 0, 0)
	f.AddRoot(f.AddInternal("t0", 0, []tree.NodeID{empty, leaf}))

	_, err := Extract(f, tree.NewAllocator())
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrGrammarCorruption)
}
