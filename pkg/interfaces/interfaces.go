/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Shared interfaces and configuration for the Arvada grammar miner. Defines
the oracle contract, the miner configuration, and the status/error taxonomy used
across all packages to break import cycles and enable proper modular design.
*/

package interfaces

import (
	"context"
	"errors"
	"time"
)

// Oracle is the black-box validity predicate for the target language.
// Implementations may be slow, external, and occasionally flaky; callers
// must treat every call as expensive and cache verdicts by exact string.
type Oracle interface {
	// IsValid reports whether the oracle accepts the candidate string.
	// A non-nil error means the oracle itself was unavailable; callers
	// treat that conservatively as a rejection, never as a fatal failure.
	IsValid(ctx context.Context, input string) (bool, error)
	// Stats returns cumulative invocation counters for reporting.
	Stats() OracleStats
}

// OracleStats tracks oracle usage for a whole mining run
type OracleStats struct {
	Calls     int64         `json:"calls"`      // Total IsValid calls, cached or not
	RealCalls int64         `json:"real_calls"` // Calls that reached the underlying oracle
	CacheHits int64         `json:"cache_hits"` // Calls answered from the verdict cache
	Accepted  int64         `json:"accepted"`   // Verdicts that were "valid"
	Rejected  int64         `json:"rejected"`   // Verdicts that were "invalid"
	Failures  int64         `json:"failures"`   // Oracle-unavailable conditions
	TimeSpent time.Duration `json:"time_spent"` // Wall time inside real oracle calls
}

// MinerConfig represents the configuration for a grammar-mining run
type MinerConfig struct {
	// Oracle configuration
	OracleCommand string        // External oracle command; invoked as "<cmd> <file>"
	OracleArgs    []string      // Extra arguments placed before the candidate file
	OracleTimeout time.Duration // Per-invocation timeout for the external oracle

	// Input configuration
	TrainDir string // Directory of training examples (one file per example)
	TestDir  string // Directory of held-out examples for recall evaluation

	// Search configuration
	Workers       int           // Probe worker pool size (0 = NumCPU)
	Tolerance     float64       // Fraction of probes allowed to fail per merge (0 = strict)
	MaxIterations int           // Search budget in committed-or-rejected candidates (0 = unbounded)
	MaxTime       time.Duration // Overall run budget (0 = unbounded)
	MaxProbes     int           // Cap on probe strings synthesized per candidate
	MinChunkLen   int           // Minimum length for a repeated substring to become a chunk
	ExpandTokens  bool          // Generalize digit terminals to builtin token classes

	// Generation configuration
	Seed     int64 // Seed for the sampling RNG (determinism)
	MaxDepth int   // Recursion-depth cap for sampling

	// Output configuration
	GrammarFile string // Path for the persisted grammar (.gramdict)
	LogLevel    string
	LogDir      string
	JSONLogs    bool
}

// SearchStatus describes how a mining run ended
type SearchStatus int

const (
	// StatusStable means the search reached a fixed point: no candidate
	// remained that was compatible and not blacklisted.
	StatusStable SearchStatus = iota
	// StatusBudgetExhausted means the iteration or time budget fired first.
	// The grammar is valid but possibly under-generalized. Not an error.
	StatusBudgetExhausted
)

// String returns a human-readable status name
func (s SearchStatus) String() string {
	switch s {
	case StatusStable:
		return "Stable"
	case StatusBudgetExhausted:
		return "BudgetExhausted"
	default:
		return "Unknown"
	}
}

// Sentinel errors for the conditions of the error-handling design.
var (
	// ErrOracleUnavailable classifies process errors, timeouts, and
	// malformed oracle output. Treated as a probe rejection upstream.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrInvalidExample marks a malformed or empty training example,
	// rejected at ingestion and excluded from the forest.
	ErrInvalidExample = errors.New("invalid example")

	// ErrGrammarCorruption marks a dangling symbol reference discovered
	// during extraction. The only unrecoverable condition in the engine.
	ErrGrammarCorruption = errors.New("grammar corruption")
)
