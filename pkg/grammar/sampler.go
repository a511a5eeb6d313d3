/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sampler.go
Description: Randomized string sampling from a mined grammar. Provides a lazy sequence
of derivable strings using a caller-seeded PRNG and a recursion-depth cap, so sampling
from recursive classes always terminates. The PRNG is threaded explicitly through the
sampler, never ambient global state, to keep runs reproducible.
*/

package grammar

import (
	"fmt"
	"math/rand"
	"strings"
)

// Sampler draws random strings derivable from a grammar's start class
type Sampler struct {
	g        *Grammar
	rng      *rand.Rand
	maxDepth int
	minDepth map[string]int
}

// NewSampler builds a sampler over g with the given seed and depth cap.
// Returns an error if some class cannot derive any terminal string: a
// grammar extracted from a forest always can, so that would indicate
// merge-bookkeeping corruption.
func NewSampler(g *Grammar, seed int64, maxDepth int) (*Sampler, error) {
	if maxDepth <= 0 {
		maxDepth = 16
	}
	minDepth, err := computeMinDepths(g)
	if err != nil {
		return nil, err
	}
	return &Sampler{
		g:        g,
		rng:      rand.New(rand.NewSource(seed)),
		maxDepth: maxDepth,
		minDepth: minDepth,
	}, nil
}

// computeMinDepths finds, for every class, the least derivation depth
// that reaches a fully terminal string, by fixpoint iteration.
func computeMinDepths(g *Grammar) (map[string]int, error) {
	const inf = 1 << 30
	depth := make(map[string]int, len(g.Rules))
	for id := range g.Rules {
		depth[id] = inf
	}
	for changed := true; changed; {
		changed = false
		for id, alts := range g.Rules {
			best := depth[id]
			for _, alt := range alts {
				worst := 0
				for _, sym := range alt {
					if sym.Kind != SymbolClass {
						continue
					}
					if d := depth[sym.Value]; d > worst {
						worst = d
					}
				}
				if worst < inf && worst+1 < best {
					best = worst + 1
				}
			}
			if best < depth[id] {
				depth[id] = best
				changed = true
			}
		}
	}
	for id, d := range depth {
		if d >= inf {
			return nil, fmt.Errorf("class %s derives no terminal string", id)
		}
	}
	return depth, nil
}

// Next produces the next sampled string. Alternatives are selected
// uniformly at random while the depth budget allows; once the budget
// runs low only alternatives that can still bottom out are eligible,
// which guarantees termination on recursive classes.
func (s *Sampler) Next() (string, error) {
	var sb strings.Builder
	if err := s.expand(s.g.Start, s.maxDepth, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Sample draws n strings, deduplicated, preserving first-draw order
func (s *Sampler) Sample(n int) ([]string, error) {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		str, err := s.Next()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[str]; dup {
			continue
		}
		seen[str] = struct{}{}
		out = append(out, str)
	}
	return out, nil
}

func (s *Sampler) expand(class string, budget int, sb *strings.Builder) error {
	alts := s.g.Rules[class]
	if len(alts) == 0 {
		return fmt.Errorf("class %s has no alternatives", class)
	}

	eligible := make([]Alternative, 0, len(alts))
	for _, alt := range alts {
		if s.altMinDepth(alt) <= budget {
			eligible = append(eligible, alt)
		}
	}
	if len(eligible) == 0 {
		// Depth budget below the class's own minimum; fall back to the
		// cheapest alternative so we still terminate.
		cheapest := alts[0]
		for _, alt := range alts[1:] {
			if s.altMinDepth(alt) < s.altMinDepth(cheapest) {
				cheapest = alt
			}
		}
		eligible = []Alternative{cheapest}
	}

	alt := eligible[s.rng.Intn(len(eligible))]
	for _, sym := range alt {
		if sym.Kind == SymbolTerminal {
			sb.WriteString(sym.Value)
			continue
		}
		if err := s.expand(sym.Value, budget-1, sb); err != nil {
			return err
		}
	}
	return nil
}

// altMinDepth is the derivation depth the alternative needs to reach a
// terminal string: 1 + the deepest class symbol it contains.
func (s *Sampler) altMinDepth(alt Alternative) int {
	worst := 0
	for _, sym := range alt {
		if sym.Kind != SymbolClass {
			continue
		}
		if d := s.minDepth[sym.Value]; d > worst {
			worst = d
		}
	}
	return worst + 1
}
