/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: validator.go
Description: Oracle-guided merge validation for the Arvada grammar miner. Synthesizes
cross-substitution probe strings from a scratch forest with the candidate merge applied,
submits them to the verdict-cached oracle through a bounded worker pool, and accepts the
merge only when the failed fraction stays within the configured tolerance. Probe results
are applied back in fixed order so outcomes are reproducible at any pool size.
*/

package engine

import (
	"context"
	"errors"
	"runtime"
	"sort"

	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/tree"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Verdict is the outcome of validating one candidate merge
type Verdict struct {
	Accepted    bool
	Probes      []string // Every probe submitted, in deterministic order
	Failed      []string // Probes the oracle rejected
	Unvalidated bool     // True when the merge produced no probes to test
}

// Validator checks candidate merges against the oracle
type Validator struct {
	oracle    interfaces.Oracle
	workers   int
	tolerance float64
	maxProbes int
	logger    *logrus.Logger
}

// NewValidator creates a validator. A non-positive worker count falls
// back to NumCPU; a non-positive probe cap falls back to 32.
func NewValidator(o interfaces.Oracle, workers int, tolerance float64, maxProbes int, logger *logrus.Logger) *Validator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if maxProbes <= 0 {
		maxProbes = 32
	}
	return &Validator{
		oracle:    o,
		workers:   workers,
		tolerance: tolerance,
		maxProbes: maxProbes,
		logger:    logger,
	}
}

// Validate decides whether the merge already applied to scratch (as
// class) preserves validity. Probes are the cross-substitutions of the
// merged class's derivable strings into every context the class occurs
// in. A merge with no probes is accepted but flagged unvalidated so it
// is never silently lost.
func (v *Validator) Validate(ctx context.Context, scratch *tree.Forest, class string) (*Verdict, error) {
	probes := v.synthesizeProbes(scratch, class)
	if len(probes) == 0 {
		v.logger.WithField("class", class).Debug("Vacuous merge, accepting unvalidated")
		return &Verdict{Accepted: true, Unvalidated: true}, nil
	}

	results := make([]bool, len(probes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, probe := range probes {
		i, probe := i, probe
		g.Go(func() error {
			valid, err := v.oracle.IsValid(gctx, probe)
			if err != nil && !errors.Is(err, interfaces.ErrOracleUnavailable) {
				return err
			}
			// Oracle-unavailable already decays to a rejection
			results[i] = valid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	verdict := &Verdict{Probes: probes}
	for i, probe := range probes {
		if !results[i] {
			verdict.Failed = append(verdict.Failed, probe)
		}
	}
	failedFraction := float64(len(verdict.Failed)) / float64(len(probes))
	verdict.Accepted = failedFraction <= v.tolerance
	return verdict, nil
}

// synthesizeProbes builds the bounded, deterministically ordered probe
// set: every derivable string of the merged class substituted, one
// occurrence at a time, into every position the class occupies in every
// tree. Nested occurrences each get their own probes, so a merge that
// pulls a class up to the root is still checked against its inner
// contexts. Identity substitutions reproduce the original example and
// are skipped.
func (v *Validator) synthesizeProbes(scratch *tree.Forest, class string) []string {
	derivableSet := make(map[string]struct{})
	for _, root := range scratch.Roots() {
		scratch.DerivableStrings(root, class, derivableSet)
	}
	derivable := make([]string, 0, len(derivableSet))
	for s := range derivableSet {
		derivable = append(derivable, s)
	}
	sort.Strings(derivable)

	seen := make(map[string]struct{})
	var probes []string
	for _, root := range scratch.Roots() {
		for _, occ := range scratch.ClassNodes(root, class) {
			own := scratch.Yield(occ)
			for _, s := range derivable {
				if s == own {
					continue
				}
				probe := scratch.YieldWithNodeReplaced(root, occ, s)
				if _, dup := seen[probe]; dup {
					continue
				}
				seen[probe] = struct{}{}
				probes = append(probes, probe)
			}
		}
	}
	sort.Strings(probes)
	if len(probes) > v.maxProbes {
		probes = probes[:v.maxProbes]
	}
	return probes
}
