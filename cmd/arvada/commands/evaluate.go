/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: evaluate.go
Description: Evaluate command implementation for the Arvada grammar miner. Measures
precision of a mined grammar by sampling strings and checking them against the
oracle, and recall by parsing held-out examples with the grammar's recognizer.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/rifatarefin/arvada/pkg/oracle"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunEvaluate measures precision and recall of a mined grammar
func RunEvaluate(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 Arvada - Grammar Evaluation")
	fmt.Println("==============================")
	fmt.Println()

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	g, err := grammar.Load(viper.GetString("grammar_file"))
	if err != nil {
		return fmt.Errorf("failed to load grammar: %w", err)
	}

	oracleCommand := viper.GetString("oracle_command")
	testDir := viper.GetString("test_dir")
	if oracleCommand == "" && testDir == "" {
		return fmt.Errorf("nothing to evaluate: provide --oracle for precision, --test for recall, or both")
	}

	ctx := context.Background()

	// Precision: fraction of grammar samples the oracle accepts
	if oracleCommand != "" {
		sampler, err := grammar.NewSampler(g, viper.GetInt64("seed"), viper.GetInt("max_depth"))
		if err != nil {
			return fmt.Errorf("failed to create sampler: %w", err)
		}
		samples, err := sampler.Sample(viper.GetInt("sample_count"))
		if err != nil {
			return fmt.Errorf("sampling failed: %w", err)
		}

		ext := oracle.NewExternalOracle(oracleCommand, viper.GetStringSlice("oracle_args"), viper.GetDuration("oracle_timeout"), logger)
		cached := oracle.NewCachingOracle(ext)

		accepted := 0
		for _, s := range samples {
			valid, err := cached.IsValid(ctx, s)
			if err != nil {
				logger.WithError(err).WithField("input", s).Warn("Oracle unavailable during evaluation")
				continue
			}
			if valid {
				accepted++
			}
		}
		fmt.Printf("Precision: %.3f (%d/%d samples accepted by the oracle)\n",
			ratio(accepted, len(samples)), accepted, len(samples))
	}

	// Recall: fraction of held-out examples the grammar derives
	if testDir != "" {
		held, err := ReadExamples(testDir)
		if err != nil {
			return err
		}

		derived := 0
		for _, ex := range held {
			ok, err := g.Accepts(ex)
			if err != nil {
				return fmt.Errorf("recognizer failed: %w", err)
			}
			if ok {
				derived++
			}
		}
		fmt.Printf("Recall:    %.3f (%d/%d held-out examples derived)\n",
			ratio(derived, len(held)), derived, len(held))
	}

	return nil
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
