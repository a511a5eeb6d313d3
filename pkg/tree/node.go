/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: node.go
Description: Derivation tree model for the Arvada grammar miner. Implements the forest
of per-example derivation trees as an arena of nodes addressed by index, with strict
ownership (each node owned by its parent) and the leaf-partition invariant: the leaves
of a tree, read left to right, reconstruct the originating example exactly.
*/

package tree

import (
	"fmt"
	"strings"
)

// NodeID addresses a node inside a Forest arena.
// IDs are stable for the lifetime of the forest they were created in
// and remain valid across Clone (clones share the same index space).
type NodeID int

// InvalidNode is the zero-value sentinel for "no node"
const InvalidNode NodeID = -1

// Node is a single derivation tree node. A terminal node carries the
// exact substring of the originating example it covers; an internal
// node carries a nonterminal class label and an ordered child list.
type Node struct {
	Label    string   // Terminal text, or nonterminal class id
	Terminal bool     // True for leaf terminals
	Children []NodeID // Ordered children, empty for terminals
	Example  int      // Index of the originating example
	Start    int      // Span start (byte offset) in the originating example
	End      int      // Span end (exclusive byte offset)
}

// Allocator hands out fresh nonterminal class identifiers (t0, t1, ...).
// One allocator is owned by one mining run; there is no ambient global
// counter, so parallel runs cannot interfere.
type Allocator struct {
	next int
}

// NewAllocator creates a class id allocator. The first id handed out is
// t0, which by convention labels the start class of every forest.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Fresh returns a new, unique nonterminal class id
func (a *Allocator) Fresh() string {
	id := fmt.Sprintf("t%d", a.next)
	a.next++
	return id
}

// Count returns how many ids have been allocated so far
func (a *Allocator) Count() int {
	return a.next
}

// Forest holds one derivation tree per training example plus the arena
// backing every node. All merge operations produce a mutated clone so
// the live forest is only ever replaced wholesale (atomic commits).
type Forest struct {
	nodes    []Node
	roots    []NodeID // One root per surviving example, in input order
	examples []string // The example strings the roots derive
}

// NewForest creates an empty forest over the given example strings
func NewForest(examples []string) *Forest {
	return &Forest{
		examples: examples,
		roots:    make([]NodeID, 0, len(examples)),
	}
}

// AddTerminal appends a terminal leaf to the arena and returns its id
func (f *Forest) AddTerminal(text string, example, start int) NodeID {
	f.nodes = append(f.nodes, Node{
		Label:    text,
		Terminal: true,
		Example:  example,
		Start:    start,
		End:      start + len(text),
	})
	return NodeID(len(f.nodes) - 1)
}

// AddInternal appends an internal node with the given class label and
// children. The node's span is the union of its children's spans.
func (f *Forest) AddInternal(label string, example int, children []NodeID) NodeID {
	n := Node{
		Label:    label,
		Example:  example,
		Children: children,
	}
	if len(children) > 0 {
		n.Start = f.nodes[children[0]].Start
		n.End = f.nodes[children[len(children)-1]].End
	}
	f.nodes = append(f.nodes, n)
	return NodeID(len(f.nodes) - 1)
}

// AddRoot registers a node as the root of one example's tree
func (f *Forest) AddRoot(id NodeID) {
	f.roots = append(f.roots, id)
}

// Node returns the node stored at the given id
func (f *Forest) Node(id NodeID) *Node {
	return &f.nodes[id]
}

// Roots returns the root node of every example tree, in input order
func (f *Forest) Roots() []NodeID {
	return f.roots
}

// Examples returns the example strings the forest derives
func (f *Forest) Examples() []string {
	return f.examples
}

// Len returns the number of nodes in the arena
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Clone returns a deep copy of the forest. Node ids carry over, so a
// clone can be mutated freely and swapped in as the new live forest.
func (f *Forest) Clone() *Forest {
	c := &Forest{
		nodes:    make([]Node, len(f.nodes)),
		roots:    append([]NodeID(nil), f.roots...),
		examples: f.examples,
	}
	for i, n := range f.nodes {
		cn := n
		cn.Children = append([]NodeID(nil), n.Children...)
		c.nodes[i] = cn
	}
	return c
}

// Yield returns the terminal string derived from the subtree at id:
// the left-to-right concatenation of its leaf labels.
func (f *Forest) Yield(id NodeID) string {
	var sb strings.Builder
	f.yield(id, &sb)
	return sb.String()
}

func (f *Forest) yield(id NodeID, sb *strings.Builder) {
	n := &f.nodes[id]
	if n.Terminal {
		sb.WriteString(n.Label)
		return
	}
	for _, c := range n.Children {
		f.yield(c, sb)
	}
}

// YieldWithNodeReplaced returns the yield of the subtree at id, except
// that the single subtree rooted at target derives the replacement
// string instead of its own yield. This is the core primitive of
// cross-substitution probe synthesis: one occurrence is swapped at a
// time, so nested occurrences of a class each get their own probe.
func (f *Forest) YieldWithNodeReplaced(id, target NodeID, replacement string) string {
	var sb strings.Builder
	f.yieldReplaced(id, target, replacement, &sb)
	return sb.String()
}

func (f *Forest) yieldReplaced(id, target NodeID, replacement string, sb *strings.Builder) {
	if id == target {
		sb.WriteString(replacement)
		return
	}
	n := &f.nodes[id]
	if n.Terminal {
		sb.WriteString(n.Label)
		return
	}
	for _, c := range n.Children {
		f.yieldReplaced(c, target, replacement, sb)
	}
}

// ClassNodes returns every node under id (inclusive) whose label is the
// given class, in preorder. Nested occurrences are all reported.
func (f *Forest) ClassNodes(id NodeID, class string) []NodeID {
	var out []NodeID
	var visit func(NodeID)
	visit = func(cur NodeID) {
		n := &f.nodes[cur]
		if n.Terminal {
			return
		}
		if n.Label == class {
			out = append(out, cur)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(id)
	return out
}

// TerminalNodes returns every terminal leaf under id (inclusive) whose
// text is exactly the given string, in left-to-right order.
func (f *Forest) TerminalNodes(id NodeID, text string) []NodeID {
	var out []NodeID
	var visit func(NodeID)
	visit = func(cur NodeID) {
		n := &f.nodes[cur]
		if n.Terminal {
			if n.Label == text {
				out = append(out, cur)
			}
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(id)
	return out
}

// ContainsClass reports whether any node in the subtree at id carries
// the given class label.
func (f *Forest) ContainsClass(id NodeID, class string) bool {
	n := &f.nodes[id]
	if n.Terminal {
		return false
	}
	if n.Label == class {
		return true
	}
	for _, c := range n.Children {
		if f.ContainsClass(c, class) {
			return true
		}
	}
	return false
}

// DerivableStrings collects, into out, every distinct string derived by
// a subtree labeled with class anywhere under id. Nested occurrences
// contribute their own yields.
func (f *Forest) DerivableStrings(id NodeID, class string, out map[string]struct{}) {
	for _, nid := range f.ClassNodes(id, class) {
		out[f.Yield(nid)] = struct{}{}
	}
}

// Relabel rewrites every internal node whose label is in mapping to the
// mapped label, across the whole forest, then collapses any resulting
// direct self-indirection (a class node whose only child carries the
// same class). Mutates the forest; callers operate on a Clone.
func (f *Forest) Relabel(mapping map[string]string) {
	for i := range f.nodes {
		n := &f.nodes[i]
		if n.Terminal {
			continue
		}
		if to, ok := mapping[n.Label]; ok {
			n.Label = to
		}
	}
	for _, r := range f.roots {
		f.collapseSelfIndirection(r)
	}
}

// collapseSelfIndirection removes tx -> tx single-child chains that
// relabeling can introduce, mirroring the double-indirection fixup of
// nonterminal coalescing.
func (f *Forest) collapseSelfIndirection(id NodeID) {
	n := &f.nodes[id]
	if n.Terminal {
		return
	}
	for len(n.Children) == 1 {
		c := &f.nodes[n.Children[0]]
		if c.Terminal || c.Label != n.Label {
			break
		}
		n.Children = append([]NodeID(nil), c.Children...)
	}
	for _, c := range n.Children {
		f.collapseSelfIndirection(c)
	}
}

// BubbleSequence wraps every occurrence of the given contiguous child
// label sequence, anywhere in the forest, in a fresh internal node
// labeled class. Occurrences are matched greedily left to right, bottom
// up. Mutates the forest; callers operate on a Clone. Returns the ids
// of the created nodes in deterministic order.
func (f *Forest) BubbleSequence(seq []string, class string) []NodeID {
	var created []NodeID
	for _, r := range f.roots {
		f.bubble(r, seq, class, &created)
	}
	return created
}

func (f *Forest) bubble(id NodeID, seq []string, class string, created *[]NodeID) {
	// Note: f.nodes may be reallocated by AddInternal, so re-index by id
	// instead of holding a *Node across appends.
	if f.nodes[id].Terminal {
		return
	}
	for _, c := range f.nodes[id].Children {
		f.bubble(c, seq, class, created)
	}
	for {
		ind := f.matchChildren(id, seq)
		if ind < 0 {
			return
		}
		children := f.nodes[id].Children
		grouped := append([]NodeID(nil), children[ind:ind+len(seq)]...)
		parent := f.AddInternal(class, f.nodes[id].Example, grouped)
		*created = append(*created, parent)
		newChildren := make([]NodeID, 0, len(children)-len(seq)+1)
		newChildren = append(newChildren, children[:ind]...)
		newChildren = append(newChildren, parent)
		newChildren = append(newChildren, children[ind+len(seq):]...)
		f.nodes[id].Children = newChildren
	}
}

// matchChildren returns the first index where the children of id match
// the label sequence seq, or -1.
func (f *Forest) matchChildren(id NodeID, seq []string) int {
	children := f.nodes[id].Children
	if len(seq) == 0 || len(children) < len(seq) {
		return -1
	}
	for i := 0; i+len(seq) <= len(children); i++ {
		ok := true
		for j, want := range seq {
			if f.nodes[children[i+j]].Label != want {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

// CheckPartition verifies the strict-partition invariant for every
// tree: leaf yields reconstruct each example with no gaps or overlaps.
func (f *Forest) CheckPartition() error {
	for i, r := range f.roots {
		got := f.Yield(r)
		want := f.examples[f.nodes[r].Example]
		if got != want {
			return fmt.Errorf("tree %d violates partition invariant: derived %q, example %q", i, got, want)
		}
	}
	return nil
}

// String renders the forest in a compact bracketed form for debugging
func (f *Forest) String() string {
	var sb strings.Builder
	for i, r := range f.roots {
		if i > 0 {
			sb.WriteByte('\n')
		}
		f.render(r, &sb)
	}
	return sb.String()
}

func (f *Forest) render(id NodeID, sb *strings.Builder) {
	n := &f.nodes[id]
	if n.Terminal {
		fmt.Fprintf(sb, "%q", n.Label)
		return
	}
	sb.WriteString(n.Label)
	sb.WriteByte('[')
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteByte(' ')
		}
		f.render(c, sb)
	}
	sb.WriteByte(']')
}
