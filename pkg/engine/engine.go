/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Search controller for the Arvada grammar miner. Drives the propose/
validate/commit loop over generalization candidates to a fixed point or search-budget
exhaustion. Owns the whole search state — forest, class allocator, blacklist, verdict
cache, seeded PRNG — as one run-scoped context object, applies merges atomically by
swapping in the validated scratch forest, and finalizes gracefully when the budget
fires. Strictly sequential: one candidate is validated at a time against the live
forest, with parallelism confined to the probe batch inside validation.
*/

package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/oracle"
	"github.com/rifatarefin/arvada/pkg/tree"
	"github.com/sirupsen/logrus"
)

// searchState is the controller's position in its state machine
type searchState int

const (
	stateExploring searchState = iota
	stateStable
	stateDone
)

// CommitRecord is the audit trail of one accepted merge: the candidate,
// the class it produced, and every probe the acceptance rested on.
// Replaying the probes against a stable oracle must reproduce "valid".
type CommitRecord struct {
	Candidate   string   `json:"candidate"`
	Class       string   `json:"class"`
	Probes      []string `json:"probes"`
	Unvalidated bool     `json:"unvalidated"`
}

// MinerStats summarizes one mining run
type MinerStats struct {
	Iterations  int                    `json:"iterations"`
	Committed   int                    `json:"committed"`
	Rejected    int                    `json:"rejected"`
	Unvalidated int                    `json:"unvalidated"`
	Excluded    int                    `json:"excluded"`
	Duration    time.Duration          `json:"duration"`
	Oracle      interfaces.OracleStats `json:"oracle"`
}

// Result is the outcome of a mining run
type Result struct {
	Grammar *grammar.Grammar       // Minimized, token-expanded artifact
	Raw     *grammar.Grammar       // As extracted from the forest, before cleanup
	Status  interfaces.SearchStatus
	Stats   MinerStats
	Commits []CommitRecord
}

// Engine is the grammar-mining search controller
type Engine struct {
	config    *interfaces.MinerConfig
	logger    *logrus.Logger
	oracle    *oracle.CachingOracle
	validator *Validator

	runID     string
	alloc     *tree.Allocator
	rng       *rand.Rand
	forest    *tree.Forest
	start     string
	blacklist map[string]struct{}
	commits   []CommitRecord
	state     searchState
	stats     MinerStats
}

// NewEngine creates a mining engine. The supplied oracle is wrapped in
// a run-scoped verdict cache; all randomness is seeded from the config.
func NewEngine(config *interfaces.MinerConfig, o interfaces.Oracle, logger *logrus.Logger) *Engine {
	cached := oracle.NewCachingOracle(o)
	return &Engine{
		config:    config,
		logger:    logger,
		oracle:    cached,
		validator: NewValidator(cached, config.Workers, config.Tolerance, config.MaxProbes, logger),
		runID:     uuid.New().String(),
		alloc:     tree.NewAllocator(),
		rng:       rand.New(rand.NewSource(config.Seed)),
		blacklist: make(map[string]struct{}),
	}
}

// RunID returns the unique identifier of this mining run
func (e *Engine) RunID() string {
	return e.runID
}

// Forest returns the live forest, for inspection and tests
func (e *Engine) Forest() *tree.Forest {
	return e.forest
}

// Start returns the start class labeling the forest roots
func (e *Engine) Start() string {
	return e.start
}

// Commits returns the audit records of every accepted merge
func (e *Engine) Commits() []CommitRecord {
	return e.commits
}

// Mine runs the full pipeline over the given training examples: initial
// tree construction, the generalization search, extraction, token
// expansion, and minimization. Budget exhaustion is a status, never an
// error; the only fatal condition is a corrupt extraction.
func (e *Engine) Mine(ctx context.Context, examples []string) (*Result, error) {
	started := time.Now()
	log := e.logger.WithField("run_id", e.runID)
	log.WithField("examples", len(examples)).Info("Starting grammar mining run")

	chunked, err := tree.Chunk(examples, e.config.MinChunkLen, e.alloc, e.logger)
	if err != nil {
		return nil, err
	}
	e.forest = chunked.Forest
	e.start = chunked.Start
	e.stats.Excluded = chunked.Excluded

	runCtx := ctx
	var cancel context.CancelFunc
	if e.config.MaxTime > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.config.MaxTime)
		defer cancel()
	}

	status := e.search(runCtx, log)

	raw, err := Extract(e.forest, e.alloc)
	if err != nil {
		return nil, err
	}
	refined := raw.Clone()
	if e.config.ExpandTokens {
		refined = ExpandTokens(runCtx, e.oracle, refined, e.forest, e.rng, e.logger)
	}
	refined = grammar.Minimize(refined)
	if err := refined.Validate(); err != nil {
		return nil, err
	}

	e.stats.Duration = time.Since(started)
	e.stats.Oracle = e.oracle.Stats()

	log.WithFields(logrus.Fields{
		"status":       status.String(),
		"iterations":   e.stats.Iterations,
		"committed":    e.stats.Committed,
		"rejected":     e.stats.Rejected,
		"classes":      len(refined.Rules),
		"grammar_size": refined.Size(),
		"oracle_calls": e.stats.Oracle.Calls,
		"real_calls":   e.stats.Oracle.RealCalls,
		"duration":     e.stats.Duration,
	}).Info("Grammar mining run finished")

	return &Result{
		Grammar: refined,
		Raw:     raw,
		Status:  status,
		Stats:   e.stats,
		Commits: e.commits,
	}, nil
}

// search runs the Exploring/Stable/Done state machine and returns how
// the run ended. Each iteration pops the top-ranked candidate, applies
// it to a scratch clone, validates, and either commits the clone as the
// new live forest or blacklists the candidate. Commits are atomic: the
// live forest is only ever replaced wholesale, so a budget firing
// mid-candidate can never leave partial state behind.
func (e *Engine) search(ctx context.Context, log *logrus.Entry) interfaces.SearchStatus {
	e.state = stateExploring
	status := interfaces.StatusStable

	for e.state == stateExploring {
		if ctx.Err() != nil {
			status = interfaces.StatusBudgetExhausted
			log.Warn("Search time budget exhausted, finalizing with committed merges")
			break
		}
		if e.config.MaxIterations > 0 && e.stats.Iterations >= e.config.MaxIterations {
			status = interfaces.StatusBudgetExhausted
			log.WithField("iterations", e.stats.Iterations).Warn("Search iteration budget exhausted")
			break
		}

		candidates := generateCandidates(e.forest, e.blacklist)
		if len(candidates) == 0 {
			e.state = stateStable
			log.WithField("iterations", e.stats.Iterations).Info("Search reached fixed point")
			break
		}
		cand := candidates[0]
		e.stats.Iterations++

		scratch := e.forest.Clone()
		class := e.apply(cand, scratch)

		verdict, err := e.validator.Validate(ctx, scratch, class)
		if err != nil {
			// Only context termination reaches here; finalize gracefully
			status = interfaces.StatusBudgetExhausted
			log.WithError(err).Warn("Validation interrupted, finalizing with committed merges")
			break
		}

		if !verdict.Accepted {
			e.blacklist[cand.Key()] = struct{}{}
			e.stats.Rejected++
			log.WithFields(logrus.Fields{
				"candidate": cand.String(),
				"probes":    len(verdict.Probes),
				"failed":    len(verdict.Failed),
			}).Debug("Rejected merge")
			continue
		}

		e.forest = scratch
		e.stats.Committed++
		if verdict.Unvalidated {
			e.stats.Unvalidated++
			log.WithField("candidate", cand.String()).Warn("Committed unvalidated merge")
		}
		e.commits = append(e.commits, CommitRecord{
			Candidate:   cand.String(),
			Class:       class,
			Probes:      verdict.Probes,
			Unvalidated: verdict.Unvalidated,
		})
		log.WithFields(logrus.Fields{
			"candidate": cand.String(),
			"class":     class,
			"probes":    len(verdict.Probes),
		}).Info("Committed merge")
	}

	e.state = stateDone
	return status
}

// apply performs the candidate merge on the scratch forest and returns
// the class the merge unifies under. Coalesces involving the start
// class keep the start name so the roots stay consistently labeled.
func (e *Engine) apply(cand *Candidate, scratch *tree.Forest) string {
	if cand.Kind == KindBubble {
		class := e.alloc.Fresh()
		scratch.BubbleSequence(cand.Seq, class)
		return class
	}
	merged := e.alloc.Fresh()
	if cand.First == e.start || cand.Second == e.start {
		merged = e.start
	}
	scratch.Relabel(map[string]string{
		cand.First:  merged,
		cand.Second: merged,
	})
	return merged
}
