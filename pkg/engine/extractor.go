/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: extractor.go
Description: Grammar extraction for the Arvada grammar miner. Flattens the stabilized
forest into a production-rule set: each internal node contributes its ordered child
labels as one alternative of its class, duplicates are removed, and the class of the
top-level nodes becomes the start symbol. Extraction is the one place a dangling symbol
reference is treated as fatal, since it can only mean broken merge bookkeeping.
*/

package engine

import (
	"sort"

	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/rifatarefin/arvada/pkg/tree"
)

// Extract builds the grammar artifact from the final forest. When the
// roots carry more than one distinct class, a synthetic start class is
// created with one alternative per observed top-level class.
func Extract(f *tree.Forest, alloc *tree.Allocator) (*grammar.Grammar, error) {
	rootLabels := make([]string, 0, 1)
	seenRoot := make(map[string]struct{})
	for _, r := range f.Roots() {
		label := f.Node(r).Label
		if _, dup := seenRoot[label]; dup {
			continue
		}
		seenRoot[label] = struct{}{}
		rootLabels = append(rootLabels, label)
	}
	sort.Strings(rootLabels)

	start := rootLabels[0]
	if len(rootLabels) > 1 {
		start = alloc.Fresh()
	}
	g := grammar.New(start)
	if len(rootLabels) > 1 {
		for _, label := range rootLabels {
			g.AddAlternative(start, grammar.Alternative{grammar.Class(label)})
		}
	}

	var visit func(id tree.NodeID)
	visit = func(id tree.NodeID) {
		n := f.Node(id)
		if n.Terminal || len(n.Children) == 0 {
			return
		}
		alt := make(grammar.Alternative, 0, len(n.Children))
		for _, c := range n.Children {
			cn := f.Node(c)
			if cn.Terminal {
				alt = append(alt, grammar.Terminal(cn.Label))
			} else {
				alt = append(alt, grammar.Class(cn.Label))
			}
		}
		g.AddAlternative(n.Label, alt)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range f.Roots() {
		visit(r)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
