/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: chunker.go
Description: Initial derivation tree construction for the Arvada grammar miner. Splits
each training example into leaves, folding the longest substrings repeated across the
corpus into shared chunk leaves, and wraps every distinct leaf label in its own seed
nonterminal class. Purely structural: this stage never consults the oracle.
*/

package tree

import (
	"strings"
	"unicode/utf8"

	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// ChunkResult is the output of initial tree construction
type ChunkResult struct {
	Forest   *Forest           // One derivation tree per accepted example
	Start    string            // The start class labeling every root (t0)
	Classes  map[string]string // Seed class id -> the leaf text it wraps
	Excluded int               // Examples rejected at ingestion
}

// segment is a span of one example that is either an already-folded
// chunk or residual text still open for folding.
type segment struct {
	text  string
	start int
	fixed bool // true once folded into a chunk leaf
}

// Chunk builds the initial forest for the given training examples.
// Malformed (empty or non-UTF-8) examples are excluded with a warning
// and counted in the result; the run continues with the remainder.
// Folding is deterministic: the longest substring occurring at two or
// more positions across the corpus wins each round, ties broken by
// occurrence count (more first) and then by earliest position.
func Chunk(examples []string, minChunkLen int, alloc *Allocator, logger *logrus.Logger) (*ChunkResult, error) {
	if minChunkLen < 2 {
		minChunkLen = 2
	}

	accepted := make([]string, 0, len(examples))
	excluded := 0
	for i, ex := range examples {
		if ex == "" || !utf8.ValidString(ex) {
			excluded++
			logger.WithFields(logrus.Fields{
				"example": i,
				"reason":  interfaces.ErrInvalidExample.Error(),
			}).Warn("Excluding malformed training example")
			continue
		}
		accepted = append(accepted, ex)
	}
	if len(accepted) == 0 {
		return nil, interfaces.ErrInvalidExample
	}
	if excluded > 0 {
		logger.WithField("excluded", excluded).Warn("Some training examples were excluded at ingestion")
	}

	segs := make([][]segment, len(accepted))
	for i, ex := range accepted {
		segs[i] = []segment{{text: ex, start: 0}}
	}

	// Fold the best repeated substring until none remains
	for {
		best, ok := bestRepeat(segs, minChunkLen)
		if !ok {
			break
		}
		segs = fold(segs, best)
	}

	forest := NewForest(accepted)
	start := alloc.Fresh() // t0 by construction
	classes := make(map[string]string)
	classFor := make(map[string]string)

	for i := range accepted {
		var children []NodeID
		addLeaf := func(text string, at int) {
			class, ok := classFor[text]
			if !ok {
				class = alloc.Fresh()
				classFor[text] = class
				classes[class] = text
			}
			leaf := forest.AddTerminal(text, i, at)
			children = append(children, forest.AddInternal(class, i, []NodeID{leaf}))
		}
		for _, s := range segs[i] {
			if s.fixed {
				addLeaf(s.text, s.start)
				continue
			}
			// Residue falls back to single-rune leaves
			at := s.start
			for _, r := range s.text {
				addLeaf(string(r), at)
				at += utf8.RuneLen(r)
			}
		}
		inner := forest.AddInternal(alloc.Fresh(), i, children)
		root := forest.AddInternal(start, i, []NodeID{inner})
		forest.AddRoot(root)
	}

	if err := forest.CheckPartition(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"examples": len(accepted),
		"chunks":   len(classes),
		"excluded": excluded,
	}).Info("Built initial derivation trees")

	return &ChunkResult{
		Forest:   forest,
		Start:    start,
		Classes:  classes,
		Excluded: excluded,
	}, nil
}

// occurrence records one position of a candidate substring
type occurrence struct {
	example int
	at      int // absolute offset in the example
}

// bestRepeat finds the substring of length >= minLen occurring at two
// or more positions inside unfolded segments, preferring longer
// substrings, then more occurrences, then the earliest first position.
func bestRepeat(segs [][]segment, minLen int) (string, bool) {
	counts := make(map[string][]occurrence)
	for ei, row := range segs {
		for _, s := range row {
			if s.fixed {
				continue
			}
			n := len(s.text)
			for i := 0; i < n; i++ {
				for j := i + minLen; j <= n; j++ {
					sub := s.text[i:j]
					counts[sub] = append(counts[sub], occurrence{example: ei, at: s.start + i})
				}
			}
		}
	}

	var best string
	var bestOccs []occurrence
	for sub, occs := range counts {
		if len(occs) < 2 {
			continue
		}
		if best == "" || better(sub, occs, best, bestOccs) {
			best, bestOccs = sub, occs
		}
	}
	return best, best != ""
}

// better applies the deterministic tie-break between two candidates
func better(sub string, occs []occurrence, cur string, curOccs []occurrence) bool {
	if len(sub) != len(cur) {
		return len(sub) > len(cur)
	}
	if len(occs) != len(curOccs) {
		return len(occs) > len(curOccs)
	}
	a, b := occs[0], curOccs[0]
	if a.example != b.example {
		return a.example < b.example
	}
	if a.at != b.at {
		return a.at < b.at
	}
	return sub < cur
}

// fold rewrites every unfolded segment so that non-overlapping
// occurrences of sub, matched greedily left to right, become fixed
// chunk segments.
func fold(segs [][]segment, sub string) [][]segment {
	out := make([][]segment, len(segs))
	for ei, row := range segs {
		var next []segment
		for _, s := range row {
			if s.fixed {
				next = append(next, s)
				continue
			}
			text, base := s.text, s.start
			for {
				ind := strings.Index(text, sub)
				if ind < 0 {
					break
				}
				if ind > 0 {
					next = append(next, segment{text: text[:ind], start: base})
				}
				next = append(next, segment{text: sub, start: base + ind, fixed: true})
				base += ind + len(sub)
				text = text[ind+len(sub):]
			}
			if text != "" {
				next = append(next, segment{text: text, start: base})
			}
		}
		out[ei] = next
	}
	return out
}
