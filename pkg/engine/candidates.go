/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: candidates.go
Description: Generalization candidate generation for the Arvada grammar miner. Inspects
the current forest and proposes merge operations: bubble proposals that wrap a repeated
contiguous sibling sequence in a fresh nonterminal class, and coalesce proposals that
unify two existing classes. Proposals are ranked by a deterministic generalization-value
heuristic and filtered against the blacklist of previously rejected merges.
*/

package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rifatarefin/arvada/pkg/tree"
)

// CandidateKind distinguishes the two merge families
type CandidateKind int

const (
	// KindBubble wraps a repeated contiguous sibling sequence in a
	// fresh nonterminal class.
	KindBubble CandidateKind = iota
	// KindCoalesce unifies two existing classes under one class.
	KindCoalesce
)

// Candidate is one proposed merge operation
type Candidate struct {
	Kind CandidateKind

	// Bubble fields
	Seq []string // Contiguous child label sequence to wrap

	// Coalesce fields
	First  string // Lexicographically smaller class id
	Second string

	// Ranking inputs
	Occurrences int  // Nodes the merge would unify
	SeqLen      int  // Sequence length (bubbles) or 2 (coalesces)
	Recursive   bool // Whether the merge creates or extends a recursive class
	order       int  // Discovery order, the final tie-break
}

// Key returns the canonical blacklist key for the candidate. Bubble
// keys are label sequences, coalesce keys are unordered class pairs, so
// a rejected merge stays rejected no matter when it is re-derived.
func (c *Candidate) Key() string {
	if c.Kind == KindBubble {
		return "bubble:" + strings.Join(c.Seq, "\x1f")
	}
	return "coalesce:" + c.First + "|" + c.Second
}

// String renders the candidate for logging
func (c *Candidate) String() string {
	if c.Kind == KindBubble {
		return fmt.Sprintf("bubble(%s)x%d", strings.Join(c.Seq, " "), c.Occurrences)
	}
	return fmt.Sprintf("coalesce(%s,%s)x%d", c.First, c.Second, c.Occurrences)
}

// generateCandidates produces the ranked, blacklist-filtered proposal
// list for the current forest. The ordering is fully deterministic:
// recursion-creating merges first, then by unified-node count, then by
// sequence length, then by discovery order.
func generateCandidates(f *tree.Forest, blacklist map[string]struct{}) []*Candidate {
	candidates := bubbleCandidates(f)
	candidates = append(candidates, coalesceCandidates(f)...)

	filtered := candidates[:0]
	for _, c := range candidates {
		if _, banned := blacklist[c.Key()]; banned {
			continue
		}
		filtered = append(filtered, c)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.Recursive != b.Recursive {
			return a.Recursive
		}
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		if a.SeqLen != b.SeqLen {
			return a.SeqLen > b.SeqLen
		}
		return a.order < b.order
	})
	return filtered
}

// bubbleCandidates finds every contiguous sibling label sequence of
// length two or more that occurs at two or more places in the forest.
// A sequence seen only as the complete child list of its parents is
// skipped: wrapping it would add pure indirection, the parent class
// already groups exactly that sequence.
func bubbleCandidates(f *tree.Forest) []*Candidate {
	type seqInfo struct {
		seq         []string
		count       int
		fullBubbles int
		order       int
	}
	seqs := make(map[string]*seqInfo)
	order := 0

	var visit func(id tree.NodeID)
	visit = func(id tree.NodeID) {
		n := f.Node(id)
		if n.Terminal {
			return
		}
		labels := make([]string, len(n.Children))
		for i, c := range n.Children {
			labels[i] = f.Node(c).Label
		}
		for i := 0; i < len(labels); i++ {
			for j := i + 2; j <= len(labels); j++ {
				sub := labels[i:j]
				key := strings.Join(sub, "\x1f")
				info, ok := seqs[key]
				if !ok {
					info = &seqInfo{seq: append([]string(nil), sub...), order: order}
					order++
					seqs[key] = info
				}
				info.count++
				if i == 0 && j == len(labels) {
					info.fullBubbles++
				}
			}
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range f.Roots() {
		visit(r)
	}

	var out []*Candidate
	for _, info := range seqs {
		if info.count < 2 || info.count == info.fullBubbles {
			continue
		}
		out = append(out, &Candidate{
			Kind:        KindBubble,
			Seq:         info.seq,
			Occurrences: info.count,
			SeqLen:      len(info.seq),
			order:       info.order,
		})
	}
	return out
}

// coalesceCandidates proposes unifying each unordered pair of classes
// currently present in the forest. A pair is marked recursive when one
// class already occurs inside a subtree of the other, since unifying
// them would make the merged class self-referential.
func coalesceCandidates(f *tree.Forest) []*Candidate {
	members := classMembers(f)
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*Candidate
	order := 0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			recursive := nestedWithin(f, members[a], b) || nestedWithin(f, members[b], a)
			out = append(out, &Candidate{
				Kind:        KindCoalesce,
				First:       a,
				Second:      b,
				Occurrences: len(members[a]) + len(members[b]),
				SeqLen:      2,
				Recursive:   recursive,
				order:       order,
			})
			order++
		}
	}
	return out
}

// classMembers maps every class label in the forest to the nodes that
// currently carry it, in deterministic traversal order.
func classMembers(f *tree.Forest) map[string][]tree.NodeID {
	members := make(map[string][]tree.NodeID)
	var visit func(id tree.NodeID)
	visit = func(id tree.NodeID) {
		n := f.Node(id)
		if n.Terminal {
			return
		}
		members[n.Label] = append(members[n.Label], id)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range f.Roots() {
		visit(r)
	}
	return members
}

// nestedWithin reports whether class occurs strictly below any of the
// given nodes.
func nestedWithin(f *tree.Forest, nodes []tree.NodeID, class string) bool {
	for _, id := range nodes {
		for _, c := range f.Node(id).Children {
			if f.ContainsClass(c, class) {
				return true
			}
		}
	}
	return false
}
