/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: End-to-end tests for the mining engine. Covers the full pipeline on the
arithmetic-sum language, digit-token expansion, search-budget exhaustion, commit
probe replay, seeded determinism, and example ingestion failures.
*/

package engine_test

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/rifatarefin/arvada/pkg/engine"
	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/oracle"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sumPattern = regexp.MustCompile(`^[0-9]+(\+[0-9]+)*$`)

func isSum(s string) bool { return sumPattern.MatchString(s) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sumConfig() *interfaces.MinerConfig {
	return &interfaces.MinerConfig{
		Workers:      4,
		Tolerance:    0,
		MaxProbes:    32,
		MinChunkLen:  2,
		ExpandTokens: true,
		Seed:         42,
		MaxDepth:     12,
	}
}

func accepts(t *testing.T, g *grammar.Grammar, s string) bool {
	t.Helper()
	ok, err := g.Accepts(s)
	require.NoError(t, err)
	return ok
}

// TestMineArithmeticSums tests the full pipeline on plus-separated sums
func TestMineArithmeticSums(t *testing.T) {
	examples := []string{"1+1", "2+3", "1+1+1"}
	miner := engine.NewEngine(sumConfig(), oracle.NewFuncOracle(isSum), quietLogger())

	result, err := miner.Mine(context.Background(), examples)
	require.NoError(t, err)
	require.NotNil(t, result.Grammar)
	require.NotNil(t, result.Raw)

	assert.Equal(t, interfaces.StatusStable, result.Status)
	assert.NoError(t, result.Grammar.Validate())
	assert.Positive(t, result.Stats.Committed)
	assert.Positive(t, result.Stats.Oracle.Calls)

	// Every training example must survive generalization
	for _, ex := range examples {
		assert.True(t, accepts(t, result.Grammar, ex), "training example %q", ex)
	}

	// The search must have learned the recursive sum structure, and
	// token expansion must cover digits the training set never used
	for _, s := range []string{"3+2", "1+2+3", "1+2+3+1+2", "9+9+9+9"} {
		assert.True(t, accepts(t, result.Grammar, s), "generalization %q", s)
	}

	for _, s := range []string{"", "+", "1+", "+1", "++", "1++2"} {
		assert.False(t, accepts(t, result.Grammar, s), "overgeneralization %q", s)
	}
}

// TestMineExpandsDigitTokens tests that digit literals generalize to
// the builtin digit token
func TestMineExpandsDigitTokens(t *testing.T) {
	bracketed := regexp.MustCompile(`^\[[0-9]+\]$`)
	config := sumConfig()
	miner := engine.NewEngine(config, oracle.NewFuncOracle(func(s string) bool {
		return bracketed.MatchString(s)
	}), quietLogger())

	result, err := miner.Mine(context.Background(), []string{"[1]", "[2]"})
	require.NoError(t, err)
	assert.Equal(t, interfaces.StatusStable, result.Status)

	// Digits outside the training set come from the expanded token
	for _, s := range []string{"[1]", "[2]", "[0]", "[7]", "[9]"} {
		assert.True(t, accepts(t, result.Grammar, s), "%q", s)
	}
	for _, s := range []string{"[]", "7", "[", "[+]"} {
		assert.False(t, accepts(t, result.Grammar, s), "%q", s)
	}
}

// TestMineWithoutTokenExpansion tests that disabling expansion keeps
// the grammar on training-set terminals
func TestMineWithoutTokenExpansion(t *testing.T) {
	bracketed := regexp.MustCompile(`^\[[0-9]+\]$`)
	config := sumConfig()
	config.ExpandTokens = false
	miner := engine.NewEngine(config, oracle.NewFuncOracle(func(s string) bool {
		return bracketed.MatchString(s)
	}), quietLogger())

	result, err := miner.Mine(context.Background(), []string{"[1]", "[2]"})
	require.NoError(t, err)
	assert.True(t, accepts(t, result.Grammar, "[1]"))
	assert.True(t, accepts(t, result.Grammar, "[2]"))
	assert.False(t, accepts(t, result.Grammar, "[7]"), "unseen digits need expansion")
}

// TestMineIterationBudget tests graceful finalization when the
// iteration budget fires
func TestMineIterationBudget(t *testing.T) {
	config := sumConfig()
	config.MaxIterations = 1
	miner := engine.NewEngine(config, oracle.NewFuncOracle(isSum), quietLogger())

	result, err := miner.Mine(context.Background(), []string{"1+1", "2+3", "1+1+1"})
	require.NoError(t, err, "budget exhaustion is a status, never an error")

	assert.Equal(t, interfaces.StatusBudgetExhausted, result.Status)
	assert.NoError(t, result.Grammar.Validate())
	assert.LessOrEqual(t, result.Stats.Iterations, 1)
	for _, ex := range []string{"1+1", "2+3", "1+1+1"} {
		assert.True(t, accepts(t, result.Grammar, ex), "training example %q", ex)
	}
}

// TestMineCancelledContext tests graceful finalization when the run
// context is cancelled before the search starts
func TestMineCancelledContext(t *testing.T) {
	config := sumConfig()
	config.MaxTime = time.Minute
	miner := engine.NewEngine(config, oracle.NewFuncOracle(isSum), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := miner.Mine(ctx, []string{"1+1", "2+3"})
	require.NoError(t, err)
	assert.Equal(t, interfaces.StatusBudgetExhausted, result.Status)
	assert.NoError(t, result.Grammar.Validate())
	assert.True(t, accepts(t, result.Grammar, "1+1"))
	assert.True(t, accepts(t, result.Grammar, "2+3"))
}

// TestMineCommitReplay tests the audit invariant: replaying the probes
// of any validated commit against the oracle reproduces "valid"
func TestMineCommitReplay(t *testing.T) {
	miner := engine.NewEngine(sumConfig(), oracle.NewFuncOracle(isSum), quietLogger())

	result, err := miner.Mine(context.Background(), []string{"1+1", "2+3", "1+1+1"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Commits)

	for _, commit := range result.Commits {
		if commit.Unvalidated {
			assert.Empty(t, commit.Probes)
			continue
		}
		require.NotEmpty(t, commit.Probes)
		for _, probe := range commit.Probes {
			assert.True(t, isSum(probe), "commit %s carries failing probe %q", commit.Candidate, probe)
		}
	}
}

// TestMineIsDeterministic tests that the same seed and examples produce
// the identical grammar at any worker-pool size
func TestMineIsDeterministic(t *testing.T) {
	examples := []string{"1+1", "2+3", "1+1+1"}

	run := func(workers int) *engine.Result {
		config := sumConfig()
		config.Workers = workers
		miner := engine.NewEngine(config, oracle.NewFuncOracle(isSum), quietLogger())
		result, err := miner.Mine(context.Background(), examples)
		require.NoError(t, err)
		return result
	}

	first := run(1)
	second := run(8)

	assert.Equal(t, first.Grammar.String(), second.Grammar.String())
	require.Equal(t, len(first.Commits), len(second.Commits))
	for i := range first.Commits {
		assert.Equal(t, first.Commits[i].Candidate, second.Commits[i].Candidate)
		assert.Equal(t, first.Commits[i].Probes, second.Commits[i].Probes)
	}
}

// TestMineExcludesMalformedExamples tests that bad examples are counted
// and skipped rather than failing the run
func TestMineExcludesMalformedExamples(t *testing.T) {
	miner := engine.NewEngine(sumConfig(), oracle.NewFuncOracle(isSum), quietLogger())

	result, err := miner.Mine(context.Background(), []string{"1+1", "", "2+3"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Excluded)
	assert.True(t, accepts(t, result.Grammar, "1+1"))
	assert.True(t, accepts(t, result.Grammar, "2+3"))
}

// TestMineAllExamplesInvalid tests the ingestion failure path
func TestMineAllExamplesInvalid(t *testing.T) {
	miner := engine.NewEngine(sumConfig(), oracle.NewFuncOracle(isSum), quietLogger())

	_, err := miner.Mine(context.Background(), []string{"", ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrInvalidExample)
}
