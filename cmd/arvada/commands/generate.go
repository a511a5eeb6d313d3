/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generate.go
Description: Generate and show command implementations for the Arvada grammar miner.
Samples strings from a mined grammar with seeded, depth-bounded generation, and
pretty-prints grammars for inspection.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunGenerate samples strings from a mined grammar
func RunGenerate(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	g, err := grammar.Load(viper.GetString("grammar_file"))
	if err != nil {
		return fmt.Errorf("failed to load grammar: %w", err)
	}

	sampler, err := grammar.NewSampler(g, viper.GetInt64("seed"), viper.GetInt("max_depth"))
	if err != nil {
		return fmt.Errorf("failed to create sampler: %w", err)
	}

	count := viper.GetInt("sample_count")
	samples, err := sampler.Sample(count)
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}

	outputDir := viper.GetString("output_dir")
	if outputDir == "" {
		for _, s := range samples {
			fmt.Println(s)
		}
		return nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for i, s := range samples {
		name := filepath.Join(outputDir, fmt.Sprintf("sample_%04d", i))
		if err := os.WriteFile(name, []byte(s), 0644); err != nil {
			return fmt.Errorf("failed to write sample: %w", err)
		}
	}
	fmt.Printf("✨ Wrote %d samples to %s\n", len(samples), outputDir)

	return nil
}

// RunShow pretty-prints a mined grammar
func RunShow(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	g, err := grammar.Load(viper.GetString("grammar_file"))
	if err != nil {
		return fmt.Errorf("failed to load grammar: %w", err)
	}

	fmt.Printf("📖 Grammar: %d classes, %d symbols, start=%s\n\n", len(g.Rules), g.Size(), g.Start)
	fmt.Println(g.String())

	return nil
}
