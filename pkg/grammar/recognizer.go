/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: recognizer.go
Description: Earley recognizer over a mined grammar. Decides whether a string is
derivable from the start class, scanning multi-byte terminal literals directly against
the input. Used by the evaluation utility for recall measurement and by the soundness
tests; it recognizes against one in-memory grammar and generates nothing.
*/

package grammar

import (
	"strings"
)

// flatRule is one (class, alternative) pair in flattened form
type flatRule struct {
	class string
	alt   Alternative
}

// item is a dotted rule with its origin chart position
type item struct {
	rule   int
	dot    int
	origin int
}

// Accepts reports whether input is derivable from the grammar's start
// class. The grammar must be valid (no empty alternatives, no dangling
// references); Validate is checked first and its error returned as-is.
func (g *Grammar) Accepts(input string) (bool, error) {
	if err := g.Validate(); err != nil {
		return false, err
	}

	var rules []flatRule
	byClass := make(map[string][]int)
	for _, class := range g.ClassIDs() {
		for _, alt := range g.Rules[class] {
			byClass[class] = append(byClass[class], len(rules))
			rules = append(rules, flatRule{class: class, alt: alt})
		}
	}

	n := len(input)
	chart := make([][]item, n+1)
	seen := make([]map[item]struct{}, n+1)
	for i := range seen {
		seen[i] = make(map[item]struct{})
	}
	add := func(pos int, it item) {
		if _, dup := seen[pos][it]; dup {
			return
		}
		seen[pos][it] = struct{}{}
		chart[pos] = append(chart[pos], it)
	}

	for _, r := range byClass[g.Start] {
		add(0, item{rule: r, dot: 0, origin: 0})
	}

	for pos := 0; pos <= n; pos++ {
		for i := 0; i < len(chart[pos]); i++ {
			it := chart[pos][i]
			r := rules[it.rule]
			if it.dot == len(r.alt) {
				// Completion: advance every item waiting on this class
				for _, waiting := range chart[it.origin] {
					wr := rules[waiting.rule]
					if waiting.dot < len(wr.alt) {
						next := wr.alt[waiting.dot]
						if next.Kind == SymbolClass && next.Value == r.class {
							add(pos, item{rule: waiting.rule, dot: waiting.dot + 1, origin: waiting.origin})
						}
					}
				}
				continue
			}
			next := r.alt[it.dot]
			if next.Kind == SymbolClass {
				// Prediction
				for _, pr := range byClass[next.Value] {
					add(pos, item{rule: pr, dot: 0, origin: pos})
				}
				continue
			}
			// Scanning a (possibly multi-byte) terminal literal
			if strings.HasPrefix(input[pos:], next.Value) {
				add(pos+len(next.Value), item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
			}
		}
	}

	for _, it := range chart[n] {
		r := rules[it.rule]
		if r.class == g.Start && it.dot == len(r.alt) && it.origin == 0 {
			return true, nil
		}
	}
	return false, nil
}
