/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: expansion.go
Description: Token expansion pass for the Arvada grammar miner. Digit-shaped terminal
literals in the mined grammar are candidates for generalization to builtin token
classes (single digit, integer, digit string). Each generalization is validated the
same way as a search merge: sample fresh strings the token class derives, substitute
them for the terminal's occurrences in the forest one at a time, and ask the oracle.
Only fully accepted generalizations are committed.
*/

package engine

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/tree"
	"github.com/sirupsen/logrus"
)

// Builtin token class names. Reserved: the class allocator only ever
// hands out t<number> labels, so these can never collide with mined
// classes.
const (
	tokenDigit   = "tdigit"
	tokenNzDigit = "tnzdigit"
	tokenInteger = "tinteger"
	tokenDigits  = "tdigits"
)

// maxExpansionSamples caps the fresh strings probed per generalization
const maxExpansionSamples = 10

// maxSampleLen caps the length of sampled integer/digit strings
const maxSampleLen = 4

// ExpandTokens generalizes digit-shaped terminals of g to builtin token
// classes, validating each generalization against the oracle through
// the terminal's occurrences in the forest. Mutates and returns g. Runs
// on the raw extracted grammar, before minimization, so the forest's
// leaves still match the grammar's terminal literals.
func ExpandTokens(ctx context.Context, o interfaces.Oracle, g *grammar.Grammar, f *tree.Forest, rng *rand.Rand, logger *logrus.Logger) *grammar.Grammar {
	expanded := 0
	for _, term := range digitTerminals(g) {
		for _, token := range applicableTokens(term) {
			samples := sampleToken(token, term, rng)
			if !probeSamples(ctx, o, f, term, samples) {
				continue
			}
			replaceTerminal(g, term, token)
			addTokenRules(g, token)
			expanded++
			logger.WithFields(logrus.Fields{
				"terminal": term,
				"token":    token,
				"samples":  len(samples),
			}).Info("Expanded terminal to builtin token")
			break
		}
	}
	if expanded > 0 {
		logger.WithField("expanded", expanded).Debug("Token expansion pass finished")
	}
	return g
}

// digitTerminals lists the distinct all-digit terminal literals of the
// grammar, sorted. These, and only these, are expansion candidates.
func digitTerminals(g *grammar.Grammar) []string {
	seen := make(map[string]struct{})
	for _, alts := range g.Rules {
		for _, alt := range alts {
			for _, sym := range alt {
				if sym.Kind != grammar.SymbolTerminal {
					continue
				}
				if allDigits(sym.Value) {
					seen[sym.Value] = struct{}{}
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// applicableTokens lists the token classes whose language contains the
// terminal, narrowest first. The first one the oracle accepts wins, so
// a terminal only generalizes further when the narrower token fails.
func applicableTokens(term string) []string {
	tokens := make([]string, 0, 3)
	if len(term) == 1 {
		tokens = append(tokens, tokenDigit)
	}
	if len(term) == 1 || term[0] != '0' {
		tokens = append(tokens, tokenInteger)
	}
	return append(tokens, tokenDigits)
}

// sampleToken picks up to maxExpansionSamples strings the token class
// derives, other than the terminal itself. Deterministic for a fixed
// rng state.
func sampleToken(token, term string, rng *rand.Rand) []string {
	if token == tokenDigit {
		fresh := make([]string, 0, 10)
		for d := 0; d <= 9; d++ {
			if s := strconv.Itoa(d); s != term {
				fresh = append(fresh, s)
			}
		}
		return fresh
	}

	fresh := make(map[string]struct{})
	for attempts := 0; attempts < maxExpansionSamples*8 && len(fresh) < maxExpansionSamples; attempts++ {
		n := 1 + rng.Intn(maxSampleLen)
		var sb strings.Builder
		for i := 0; i < n; i++ {
			lo := byte('0')
			if token == tokenInteger && i == 0 && n > 1 {
				lo = '1'
			}
			sb.WriteByte(lo + byte(rng.Intn(10-int(lo-'0'))))
		}
		s := sb.String()
		if s == term {
			continue
		}
		fresh[s] = struct{}{}
	}
	out := make([]string, 0, len(fresh))
	for s := range fresh {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// probeSamples substitutes each sample for every forest occurrence of
// the terminal, one at a time, and checks the oracle. Expansion is
// strict: one rejected probe vetoes the token. Oracle failures count as
// rejections, matching the search's conservative stance.
func probeSamples(ctx context.Context, o interfaces.Oracle, f *tree.Forest, term string, samples []string) bool {
	if len(samples) == 0 {
		return false
	}
	probed := make(map[string]struct{})
	for _, root := range f.Roots() {
		for _, occ := range f.TerminalNodes(root, term) {
			for _, s := range samples {
				probe := f.YieldWithNodeReplaced(root, occ, s)
				if _, dup := probed[probe]; dup {
					continue
				}
				probed[probe] = struct{}{}
				valid, err := o.IsValid(ctx, probe)
				if err != nil || !valid {
					return false
				}
			}
		}
	}
	return len(probed) > 0
}

// replaceTerminal rewrites every occurrence of the terminal literal in
// the grammar to a reference to the token class. The builtin token
// rules themselves are left alone, so a committed token class never
// becomes self-referential.
func replaceTerminal(g *grammar.Grammar, term, token string) {
	for class, alts := range g.Rules {
		switch class {
		case tokenDigit, tokenNzDigit, tokenInteger, tokenDigits:
			continue
		}
		for _, alt := range alts {
			for i, sym := range alt {
				if sym.Kind == grammar.SymbolTerminal && sym.Value == term {
					alt[i] = grammar.Class(token)
				}
			}
		}
	}
}

// addTokenRules installs the builtin rules the committed token needs
func addTokenRules(g *grammar.Grammar, token string) {
	digitAlready := len(g.Rules[tokenDigit]) > 0
	if !digitAlready {
		for d := 0; d <= 9; d++ {
			g.AddAlternative(tokenDigit, grammar.Alternative{grammar.Terminal(strconv.Itoa(d))})
		}
	}
	if token == tokenDigit {
		return
	}
	if len(g.Rules[tokenDigits]) == 0 {
		g.AddAlternative(tokenDigits, grammar.Alternative{grammar.Class(tokenDigit), grammar.Class(tokenDigits)})
		g.AddAlternative(tokenDigits, grammar.Alternative{grammar.Class(tokenDigit)})
	}
	if token == tokenInteger && len(g.Rules[tokenInteger]) == 0 {
		for d := 1; d <= 9; d++ {
			g.AddAlternative(tokenNzDigit, grammar.Alternative{grammar.Terminal(strconv.Itoa(d))})
		}
		g.AddAlternative(tokenInteger, grammar.Alternative{grammar.Class(tokenNzDigit), grammar.Class(tokenDigits)})
		g.AddAlternative(tokenInteger, grammar.Alternative{grammar.Class(tokenDigit)})
	}
}
