/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: minimize.go
Description: Grammar minimization pass for the Arvada grammar miner. Removes duplicate
production alternatives, inlines trivial single-symbol indirection classes, and inlines
single-alternative classes that are referenced exactly once. Purely structural cleanup:
the derived language is unchanged.
*/

package grammar

// Minimize returns a structurally smaller grammar deriving the same
// language. The start class is never inlined away.
func Minimize(g *Grammar) *Grammar {
	out := g.Clone()

	removeRepeatedAlternatives(out)

	// Classes whose single alternative is a single symbol collapse into
	// that symbol, chasing chains of such indirection to a fixpoint.
	trivial := make(map[string]Alternative)
	for changed := true; changed; {
		changed = false
		for class, alts := range out.Rules {
			if class == out.Start {
				continue
			}
			if _, done := trivial[class]; done {
				continue
			}
			if len(alts) != 1 || len(alts[0]) != 1 {
				continue
			}
			sym := alts[0][0]
			if sym.Kind == SymbolTerminal {
				trivial[class] = Alternative{sym}
				changed = true
			} else if resolved, ok := trivial[sym.Value]; ok {
				trivial[class] = resolved
				changed = true
			}
		}
	}
	inline(out, trivial)

	// Classes with one alternative referenced exactly once inline into
	// their single use site.
	counts := make(map[string]int)
	for _, alts := range out.Rules {
		for _, alt := range alts {
			for _, sym := range alt {
				if sym.Kind == SymbolClass {
					counts[sym.Value]++
				}
			}
		}
	}
	usedOnce := make(map[string]Alternative)
	for class, n := range counts {
		if n != 1 || class == out.Start {
			continue
		}
		alts := out.Rules[class]
		if len(alts) != 1 {
			continue
		}
		if referencesClass(alts[0], class) {
			continue
		}
		usedOnce[class] = alts[0]
	}
	inline(out, usedOnce)

	removeRepeatedAlternatives(out)
	return out
}

// inline splices each mapped class's body in place of every reference
// to it, then drops the mapped rules.
func inline(g *Grammar, mapping map[string]Alternative) {
	if len(mapping) == 0 {
		return
	}
	for class, alts := range g.Rules {
		for i, alt := range alts {
			for {
				idx := -1
				for j, sym := range alt {
					if sym.Kind == SymbolClass {
						if _, ok := mapping[sym.Value]; ok {
							idx = j
							break
						}
					}
				}
				if idx < 0 {
					break
				}
				body := mapping[alt[idx].Value]
				next := make(Alternative, 0, len(alt)-1+len(body))
				next = append(next, alt[:idx]...)
				next = append(next, body...)
				next = append(next, alt[idx+1:]...)
				alt = next
			}
			alts[i] = alt
		}
		g.Rules[class] = alts
	}
	for class := range mapping {
		delete(g.Rules, class)
	}
}

func referencesClass(alt Alternative, class string) bool {
	for _, sym := range alt {
		if sym.Kind == SymbolClass && sym.Value == class {
			return true
		}
	}
	return false
}

func removeRepeatedAlternatives(g *Grammar) {
	for class, alts := range g.Rules {
		seen := make(map[string]struct{}, len(alts))
		kept := alts[:0]
		for _, alt := range alts {
			key := alt.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, alt)
		}
		g.Rules[class] = kept
	}
}

// Clone returns a deep copy of the grammar
func (g *Grammar) Clone() *Grammar {
	c := New(g.Start)
	for class, alts := range g.Rules {
		copied := make([]Alternative, len(alts))
		for i, alt := range alts {
			copied[i] = append(Alternative(nil), alt...)
		}
		c.Rules[class] = copied
	}
	return c
}
