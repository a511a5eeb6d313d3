/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: oracle_test.go
Description: Tests for the oracle adapters. Covers the function-backed oracle, verdict
caching with concurrent access, failure classification of the external subprocess
oracle, and statistics bookkeeping.
*/

package oracle_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/oracle"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestFuncOracleVerdicts tests the function-backed oracle and its counters
func TestFuncOracleVerdicts(t *testing.T) {
	o := oracle.NewFuncOracle(func(s string) bool { return s == "yes" })
	ctx := context.Background()

	valid, err := o.IsValid(ctx, "yes")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = o.IsValid(ctx, "no")
	require.NoError(t, err)
	assert.False(t, valid)

	stats := o.Stats()
	assert.Equal(t, int64(2), stats.Calls)
	assert.Equal(t, int64(1), stats.Accepted)
	assert.Equal(t, int64(1), stats.Rejected)
}

// TestCachingOracleMemoizes tests that each distinct string hits the inner oracle once
func TestCachingOracleMemoizes(t *testing.T) {
	var inner int
	o := oracle.NewCachingOracle(oracle.NewFuncOracle(func(s string) bool {
		inner++
		return len(s) == 1
	}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		valid, err := o.IsValid(ctx, "a")
		require.NoError(t, err)
		assert.True(t, valid)
	}
	valid, err := o.IsValid(ctx, "ab")
	require.NoError(t, err)
	assert.False(t, valid)

	assert.Equal(t, 2, inner, "inner oracle consulted once per distinct string")

	stats := o.Stats()
	assert.Equal(t, int64(4), stats.Calls)
	assert.Equal(t, int64(2), stats.CacheHits)

	verdict, known := o.Known("a")
	assert.True(t, known)
	assert.True(t, verdict)
	_, known = o.Known("never-asked")
	assert.False(t, known)
}

// TestCachingOracleConcurrentSameString tests in-flight call sharing
func TestCachingOracleConcurrentSameString(t *testing.T) {
	var mu sync.Mutex
	inner := 0
	o := oracle.NewCachingOracle(oracle.NewFuncOracle(func(s string) bool {
		mu.Lock()
		inner++
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		return true
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			valid, err := o.IsValid(context.Background(), "shared")
			assert.NoError(t, err)
			assert.True(t, valid)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inner, "concurrent callers share one inner invocation")
}

// TestExternalOracleExitCodes tests verdict classification by exit code
func TestExternalOracleExitCodes(t *testing.T) {
	ctx := context.Background()

	accept := oracle.NewExternalOracle("true", nil, time.Second, quietLogger())
	valid, err := accept.IsValid(ctx, "anything")
	require.NoError(t, err)
	assert.True(t, valid)

	reject := oracle.NewExternalOracle("false", nil, time.Second, quietLogger())
	valid, err = reject.IsValid(ctx, "anything")
	require.NoError(t, err)
	assert.False(t, valid, "nonzero exit is a plain rejection")
}

// TestExternalOracleUnavailable tests classification of a missing binary
func TestExternalOracleUnavailable(t *testing.T) {
	o := oracle.NewExternalOracle("/nonexistent/arvada-oracle", nil, time.Second, quietLogger())

	valid, err := o.IsValid(context.Background(), "anything")
	assert.False(t, valid)
	assert.ErrorIs(t, err, interfaces.ErrOracleUnavailable)

	stats := o.Stats()
	assert.Equal(t, int64(1), stats.Failures)
}

// TestExternalOracleTimeout tests that a hung checker counts as invalid, not as failure
func TestExternalOracleTimeout(t *testing.T) {
	o := oracle.NewExternalOracle("sh", []string{"-c", "sleep 5"}, 50*time.Millisecond, quietLogger())

	valid, err := o.IsValid(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, valid)

	stats := o.Stats()
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Zero(t, stats.Failures)
}
