/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: chunker_test.go
Description: Tests for initial derivation tree construction. Covers repeated-substring
folding, determinism across runs, the partition invariant, and exclusion of malformed
training examples.
*/

package tree_test

import (
	"io"
	"testing"

	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/tree"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestChunkFoldsRepeatedSubstrings tests that the dominant repeat becomes a shared chunk
func TestChunkFoldsRepeatedSubstrings(t *testing.T) {
	result, err := tree.Chunk([]string{"1+1", "2+3", "1+1+1"}, 2, tree.NewAllocator(), quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "t0", result.Start)
	assert.Zero(t, result.Excluded)
	require.NoError(t, result.Forest.CheckPartition())

	// "1+1" repeats across the corpus and must be folded into one seed class
	chunked := make(map[string]bool)
	for _, text := range result.Classes {
		chunked[text] = true
	}
	assert.True(t, chunked["1+1"], "the repeated substring should become a chunk leaf")

	// Every root carries the start class and derives its example
	for i, root := range result.Forest.Roots() {
		assert.Equal(t, result.Start, result.Forest.Node(root).Label)
		assert.Equal(t, result.Forest.Examples()[i], result.Forest.Yield(root))
	}
}

// TestChunkDeterminism tests that identical input yields an identical forest
func TestChunkDeterminism(t *testing.T) {
	examples := []string{"a=1;b=2", "c=3", "a=1"}

	first, err := tree.Chunk(examples, 2, tree.NewAllocator(), quietLogger())
	require.NoError(t, err)
	second, err := tree.Chunk(examples, 2, tree.NewAllocator(), quietLogger())
	require.NoError(t, err)

	assert.Equal(t, first.Forest.String(), second.Forest.String())
	assert.Equal(t, first.Classes, second.Classes)
}

// TestChunkExcludesMalformedExamples tests ingestion filtering
func TestChunkExcludesMalformedExamples(t *testing.T) {
	result, err := tree.Chunk([]string{"ok+ok", "", "\xff\xfe"}, 2, tree.NewAllocator(), quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Excluded)
	assert.Len(t, result.Forest.Roots(), 1)
	require.NoError(t, result.Forest.CheckPartition())
}

// TestChunkAllExamplesInvalid tests that an empty surviving set is an error
func TestChunkAllExamplesInvalid(t *testing.T) {
	_, err := tree.Chunk([]string{"", "\xff"}, 2, tree.NewAllocator(), quietLogger())
	assert.ErrorIs(t, err, interfaces.ErrInvalidExample)
}

// TestChunkSingleExample tests that a lone example falls back to rune leaves
func TestChunkSingleExample(t *testing.T) {
	result, err := tree.Chunk([]string{"xy"}, 2, tree.NewAllocator(), quietLogger())
	require.NoError(t, err)

	require.NoError(t, result.Forest.CheckPartition())
	assert.Equal(t, "xy", result.Forest.Yield(result.Forest.Roots()[0]))
}
