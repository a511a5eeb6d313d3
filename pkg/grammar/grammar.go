/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: grammar.go
Description: Context-free grammar artifact produced by the Arvada grammar miner. Maps
nonterminal class identifiers to production alternatives, where each symbol is a tagged
variant over terminal literal or class reference. Class references are resolved by id
through the rule table, never by structural embedding, so recursive classes are safe.
*/

package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rifatarefin/arvada/pkg/interfaces"
)

// SymbolKind tags one production symbol
type SymbolKind string

const (
	// SymbolTerminal is an exact literal substring
	SymbolTerminal SymbolKind = "terminal"
	// SymbolClass is a reference to another nonterminal class by id
	SymbolClass SymbolKind = "class"
)

// Symbol is one element of a production alternative
type Symbol struct {
	Kind  SymbolKind `json:"kind"`
	Value string     `json:"value"`
}

// Terminal builds a terminal symbol
func Terminal(text string) Symbol {
	return Symbol{Kind: SymbolTerminal, Value: text}
}

// Class builds a class-reference symbol
func Class(id string) Symbol {
	return Symbol{Kind: SymbolClass, Value: id}
}

// Alternative is one ordered production body
type Alternative []Symbol

// Key renders an alternative into a canonical comparison key
func (a Alternative) Key() string {
	var sb strings.Builder
	for _, s := range a {
		if s.Kind == SymbolTerminal {
			fmt.Fprintf(&sb, "%q ", s.Value)
		} else {
			sb.WriteString(s.Value)
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// Grammar is the mined artifact: a start class plus the rule table
type Grammar struct {
	Start string                   `json:"start"`
	Rules map[string][]Alternative `json:"rules"`
}

// New creates an empty grammar with the given start class
func New(start string) *Grammar {
	return &Grammar{
		Start: start,
		Rules: make(map[string][]Alternative),
	}
}

// AddAlternative appends an alternative to a class's production set,
// ignoring exact duplicates.
func (g *Grammar) AddAlternative(class string, alt Alternative) {
	key := alt.Key()
	for _, existing := range g.Rules[class] {
		if existing.Key() == key {
			return
		}
	}
	g.Rules[class] = append(g.Rules[class], alt)
}

// ClassIDs returns every defined class id in sorted order
func (g *Grammar) ClassIDs() []string {
	ids := make([]string, 0, len(g.Rules))
	for id := range g.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Size returns the total number of symbols across all alternatives, the
// crude grammar-size measure used by the search's scoring heuristic.
func (g *Grammar) Size() int {
	size := 0
	for _, alts := range g.Rules {
		for _, alt := range alts {
			size += len(alt)
		}
	}
	return size
}

// Validate checks the structural invariants of the artifact: the start
// class is defined, every class reference resolves, and no alternative
// is empty. A dangling reference is the engine's only fatal condition.
func (g *Grammar) Validate() error {
	if _, ok := g.Rules[g.Start]; !ok {
		return fmt.Errorf("%w: start class %s has no rule", interfaces.ErrGrammarCorruption, g.Start)
	}
	for class, alts := range g.Rules {
		if len(alts) == 0 {
			return fmt.Errorf("%w: class %s has no alternatives", interfaces.ErrGrammarCorruption, class)
		}
		for _, alt := range alts {
			if len(alt) == 0 {
				return fmt.Errorf("%w: class %s has an empty alternative", interfaces.ErrGrammarCorruption, class)
			}
			for _, sym := range alt {
				if sym.Kind == SymbolClass {
					if _, ok := g.Rules[sym.Value]; !ok {
						return fmt.Errorf("%w: class %s references undefined class %s", interfaces.ErrGrammarCorruption, class, sym.Value)
					}
				}
			}
		}
	}
	return nil
}

// IsRecursive reports whether class can reach itself through its own
// alternatives, directly or transitively.
func (g *Grammar) IsRecursive(class string) bool {
	seen := make(map[string]bool)
	var walk func(id string) bool
	walk = func(id string) bool {
		if seen[id] {
			return false
		}
		seen[id] = true
		for _, alt := range g.Rules[id] {
			for _, sym := range alt {
				if sym.Kind != SymbolClass {
					continue
				}
				if sym.Value == class {
					return true
				}
				if walk(sym.Value) {
					return true
				}
			}
		}
		return false
	}
	return walk(class)
}

// String renders the grammar in a readable BNF-like form, classes in
// sorted order with the start class first.
func (g *Grammar) String() string {
	ids := g.ClassIDs()
	sort.Slice(ids, func(i, j int) bool {
		if ids[i] == g.Start {
			return true
		}
		if ids[j] == g.Start {
			return false
		}
		return ids[i] < ids[j]
	})

	var sb strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&sb, "%s ::=", id)
		for i, alt := range g.Rules[id] {
			if i > 0 {
				sb.WriteString(" |")
			}
			for _, sym := range alt {
				if sym.Kind == SymbolTerminal {
					fmt.Fprintf(&sb, " %q", sym.Value)
				} else {
					fmt.Fprintf(&sb, " %s", sym.Value)
				}
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
