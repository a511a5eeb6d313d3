/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: grammar_test.go
Description: Tests for the grammar artifact. Covers alternative deduplication,
structural validation, recursion detection, minimization, and persistence round trips.
*/

package grammar_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sumGrammar builds t0 ::= tdigit | tdigit "+" t0; tdigit ::= "1" | "2"
func sumGrammar() *grammar.Grammar {
	g := grammar.New("t0")
	g.AddAlternative("t0", grammar.Alternative{grammar.Class("tdigit")})
	g.AddAlternative("t0", grammar.Alternative{grammar.Class("tdigit"), grammar.Terminal("+"), grammar.Class("t0")})
	g.AddAlternative("tdigit", grammar.Alternative{grammar.Terminal("1")})
	g.AddAlternative("tdigit", grammar.Alternative{grammar.Terminal("2")})
	return g
}

// TestAddAlternativeDeduplicates tests that exact duplicate bodies are dropped
func TestAddAlternativeDeduplicates(t *testing.T) {
	g := grammar.New("t0")
	alt := grammar.Alternative{grammar.Terminal("x")}
	g.AddAlternative("t0", alt)
	g.AddAlternative("t0", alt)
	g.AddAlternative("t0", grammar.Alternative{grammar.Terminal("y")})

	assert.Len(t, g.Rules["t0"], 2)
	assert.Equal(t, 2, g.Size())
}

// TestValidate tests the structural invariants
func TestValidate(t *testing.T) {
	g := sumGrammar()
	require.NoError(t, g.Validate())

	// Dangling class reference
	bad := g.Clone()
	bad.AddAlternative("t0", grammar.Alternative{grammar.Class("t99")})
	assert.ErrorIs(t, bad.Validate(), interfaces.ErrGrammarCorruption)

	// Undefined start class
	noStart := grammar.New("t0")
	noStart.AddAlternative("t1", grammar.Alternative{grammar.Terminal("x")})
	assert.ErrorIs(t, noStart.Validate(), interfaces.ErrGrammarCorruption)

	// Empty alternative
	empty := grammar.New("t0")
	empty.Rules["t0"] = []grammar.Alternative{{}}
	assert.ErrorIs(t, empty.Validate(), interfaces.ErrGrammarCorruption)
}

// TestIsRecursive tests direct and transitive recursion detection
func TestIsRecursive(t *testing.T) {
	g := sumGrammar()
	assert.True(t, g.IsRecursive("t0"))
	assert.False(t, g.IsRecursive("tdigit"))

	// Transitive: t1 -> t2 -> t1
	h := grammar.New("t1")
	h.AddAlternative("t1", grammar.Alternative{grammar.Terminal("a"), grammar.Class("t2")})
	h.AddAlternative("t1", grammar.Alternative{grammar.Terminal("a")})
	h.AddAlternative("t2", grammar.Alternative{grammar.Class("t1")})
	assert.True(t, h.IsRecursive("t1"))
	assert.True(t, h.IsRecursive("t2"))
}

// TestCloneIsIndependent tests deep copying
func TestCloneIsIndependent(t *testing.T) {
	g := sumGrammar()
	c := g.Clone()
	c.AddAlternative("tdigit", grammar.Alternative{grammar.Terminal("3")})

	assert.Len(t, g.Rules["tdigit"], 2)
	assert.Len(t, c.Rules["tdigit"], 3)
}

// TestMinimizeInlinesTrivialClasses tests structural cleanup
func TestMinimizeInlinesTrivialClasses(t *testing.T) {
	g := grammar.New("t0")
	g.AddAlternative("t0", grammar.Alternative{grammar.Class("t1"), grammar.Class("t2")})
	g.AddAlternative("t1", grammar.Alternative{grammar.Terminal("a")}) // trivial indirection
	g.AddAlternative("t2", grammar.Alternative{grammar.Terminal("b")})
	g.AddAlternative("t2", grammar.Alternative{grammar.Terminal("c")})
	require.NoError(t, g.Validate())

	m := grammar.Minimize(g)
	require.NoError(t, m.Validate())

	_, hasTrivial := m.Rules["t1"]
	assert.False(t, hasTrivial, "single-terminal indirection should be inlined")

	// The derived language is unchanged
	for _, input := range []string{"ab", "ac"} {
		ok, err := m.Accepts(input)
		require.NoError(t, err)
		assert.True(t, ok, "minimized grammar should still derive %q", input)
	}
	ok, err := m.Accepts("bc")
	require.NoError(t, err)
	assert.False(t, ok)

	// The original grammar is untouched
	assert.Contains(t, g.Rules, "t1")
}

// TestMinimizeKeepsStartClass tests that the start class survives inlining
func TestMinimizeKeepsStartClass(t *testing.T) {
	g := grammar.New("t0")
	g.AddAlternative("t0", grammar.Alternative{grammar.Terminal("x")})

	m := grammar.Minimize(g)
	require.NoError(t, m.Validate())
	assert.Contains(t, m.Rules, "t0")
}

// TestSaveLoadRoundTrip tests grammar persistence
func TestSaveLoadRoundTrip(t *testing.T) {
	g := sumGrammar()
	path := filepath.Join(t.TempDir(), "mined.gramdict")

	require.NoError(t, g.Save(path))

	loaded, err := grammar.Load(path)
	require.NoError(t, err)
	assert.Equal(t, g.Start, loaded.Start)
	assert.Equal(t, g.String(), loaded.String())

	ok, err := loaded.Accepts("1+2+1")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestLoadRejectsCorruptArtifacts tests persistence validation
func TestLoadRejectsCorruptArtifacts(t *testing.T) {
	dir := t.TempDir()

	garbled := filepath.Join(dir, "garbled.gramdict")
	require.NoError(t, os.WriteFile(garbled, []byte("not json"), 0644))
	_, err := grammar.Load(garbled)
	assert.Error(t, err)

	// Structurally invalid grammars fail to load too
	dangling := filepath.Join(dir, "dangling.gramdict")
	require.NoError(t, os.WriteFile(dangling,
		[]byte(`{"start":"t0","rules":{"t0":[[{"kind":"class","value":"t9"}]]}}`), 0644))
	_, err = grammar.Load(dangling)
	assert.ErrorIs(t, err, interfaces.ErrGrammarCorruption)
}

// TestSaveRejectsInvalidGrammar tests that corrupt artifacts are never persisted
func TestSaveRejectsInvalidGrammar(t *testing.T) {
	g := grammar.New("t0")
	g.AddAlternative("t0", grammar.Alternative{grammar.Class("t9")})

	err := g.Save(filepath.Join(t.TempDir(), "bad.gramdict"))
	assert.ErrorIs(t, err, interfaces.ErrGrammarCorruption)
}
