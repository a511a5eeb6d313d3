/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: miner_demo.go
Description: Beautiful demo showcasing the grammar miner on several built-in target
languages. Mines each language from a handful of examples and an in-process oracle,
prints the discovered grammar, and round-trips sampled strings through the oracle.
*/

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/rifatarefin/arvada/pkg/engine"
	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/oracle"
	"github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("🌸 Arvada - Grammar Mining Demo 🌸")
	fmt.Println("===================================")
	fmt.Println()

	// Demo 1: Arithmetic sums with token expansion
	demoLanguage("Arithmetic sums", isArithmetic, []string{"1+1", "2+3", "1+1+1"})

	// Demo 2: Balanced parentheses
	demoLanguage("Balanced parentheses", isBalanced, []string{"()", "(())", "()()"})

	// Demo 3: Key-value assignment lists
	demoLanguage("Key-value lists", isKeyValueList, []string{"a=1", "b=2;c=3", "a=1;a=1"})
}

func demoLanguage(name string, predicate func(string) bool, examples []string) {
	fmt.Printf("📝 %s\n", name)
	fmt.Printf("   Examples: %v\n", examples)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	config := &interfaces.MinerConfig{
		Workers:      4,
		MaxProbes:    32,
		MinChunkLen:  2,
		ExpandTokens: true,
		Seed:         42,
		MaxDepth:     10,
	}

	miner := engine.NewEngine(config, oracle.NewFuncOracle(predicate), logger)
	result, err := miner.Mine(context.Background(), examples)
	if err != nil {
		log.Fatalf("mining %s failed: %v", name, err)
	}

	fmt.Printf("   Mined %d classes in %d iterations (%s, %d oracle calls)\n",
		len(result.Grammar.Rules), result.Stats.Iterations, result.Status, result.Stats.Oracle.Calls)
	fmt.Println()
	fmt.Println(indent(result.Grammar.String(), "   "))

	sampler, err := grammar.NewSampler(result.Grammar, config.Seed, config.MaxDepth)
	if err != nil {
		log.Fatalf("sampler for %s failed: %v", name, err)
	}
	samples, err := sampler.Sample(8)
	if err != nil {
		log.Fatalf("sampling %s failed: %v", name, err)
	}

	sound := 0
	for _, s := range samples {
		if predicate(s) {
			sound++
		}
	}
	fmt.Printf("   Samples: %v\n", samples)
	fmt.Printf("   Oracle accepted %d/%d samples\n", sound, len(samples))
	fmt.Println()
}

func indent(s, prefix string) string {
	out := ""
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			if i > start {
				out += prefix + s[start:i] + "\n"
			}
			start = i + 1
		}
	}
	return out
}
