/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: learn.go
Description: Learn command implementation for the Arvada grammar miner. Handles the
main mining process with comprehensive configuration, graceful shutdown on signals,
and final statistics reporting.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rifatarefin/arvada/pkg/engine"
	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/oracle"
	"github.com/rifatarefin/arvada/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunLearn executes the main mining process
func RunLearn(cmd *cobra.Command, args []string) error {
	fmt.Println("🔮 Arvada - Starting Grammar Mining Session")
	fmt.Println("===========================================")
	fmt.Println()

	// Load configuration first
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logging
	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	// Create miner configuration
	config := createMinerConfig()
	if err := validateMinerConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Read training examples
	examples, err := ReadExamples(config.TrainDir)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Loaded %d training examples from %s\n\n", len(examples), config.TrainDir)

	// Create oracle and engine
	ext := oracle.NewExternalOracle(config.OracleCommand, config.OracleArgs, config.OracleTimeout, logger)
	miner := engine.NewEngine(config, ext, logger)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n🛑 Received shutdown signal, finalizing with committed merges...")
		cancel()
	}()

	// Run the miner
	result, err := miner.Mine(ctx, examples)
	if err != nil {
		return fmt.Errorf("mining failed: %w", err)
	}

	// Persist the grammar
	if err := result.Grammar.Save(config.GrammarFile); err != nil {
		return fmt.Errorf("failed to save grammar: %w", err)
	}

	// Write the run report for later analysis
	reportPath, err := utils.WriteRunReport("mining", miner.RunID(), map[string]interface{}{
		"status":  result.Status.String(),
		"stats":   result.Stats,
		"commits": result.Commits,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to write run report")
	} else {
		logger.WithField("report", reportPath).Info("Run report written")
	}

	// Print final statistics
	printMiningStats(result, config.GrammarFile)

	fmt.Println("\n✨ Grammar mining session completed!")
	return nil
}

// createMinerConfig builds the miner configuration from viper
func createMinerConfig() *interfaces.MinerConfig {
	return &interfaces.MinerConfig{
		OracleCommand: viper.GetString("oracle_command"),
		OracleArgs:    viper.GetStringSlice("oracle_args"),
		OracleTimeout: viper.GetDuration("oracle_timeout"),
		TrainDir:      viper.GetString("train_dir"),
		TestDir:       viper.GetString("test_dir"),
		Workers:       viper.GetInt("workers"),
		Tolerance:     viper.GetFloat64("tolerance"),
		MaxIterations: viper.GetInt("max_iterations"),
		MaxTime:       viper.GetDuration("max_time"),
		MaxProbes:     viper.GetInt("max_probes"),
		MinChunkLen:   viper.GetInt("min_chunk_len"),
		ExpandTokens:  viper.GetBool("expand_tokens"),
		Seed:          viper.GetInt64("seed"),
		MaxDepth:      viper.GetInt("max_depth"),
		GrammarFile:   viper.GetString("grammar_file"),
		LogLevel:      viper.GetString("log_level"),
		LogDir:        viper.GetString("log_dir"),
		JSONLogs:      viper.GetBool("json_logs"),
	}
}

// validateMinerConfig validates the miner configuration
func validateMinerConfig(config *interfaces.MinerConfig) error {
	if config.OracleCommand == "" {
		return fmt.Errorf("oracle command is required")
	}

	if config.TrainDir == "" {
		return fmt.Errorf("training directory is required")
	}

	if _, err := os.Stat(config.TrainDir); os.IsNotExist(err) {
		return fmt.Errorf("training directory not found: %s", config.TrainDir)
	}

	if config.Tolerance < 0 || config.Tolerance >= 1 {
		return fmt.Errorf("tolerance must be in [0, 1)")
	}

	return nil
}

// printMiningStats prints the final statistics of a mining run
func printMiningStats(result *engine.Result, grammarFile string) {
	fmt.Println("\n📊 Mining Statistics")
	fmt.Println("====================")
	fmt.Printf("Status:            %s\n", result.Status)
	fmt.Printf("Iterations:        %d\n", result.Stats.Iterations)
	fmt.Printf("Committed merges:  %d\n", result.Stats.Committed)
	fmt.Printf("Rejected merges:   %d\n", result.Stats.Rejected)
	if result.Stats.Unvalidated > 0 {
		fmt.Printf("Unvalidated:       %d\n", result.Stats.Unvalidated)
	}
	if result.Stats.Excluded > 0 {
		fmt.Printf("Excluded examples: %d\n", result.Stats.Excluded)
	}
	fmt.Printf("Grammar classes:   %d\n", len(result.Grammar.Rules))
	fmt.Printf("Grammar size:      %d\n", result.Grammar.Size())
	fmt.Printf("Oracle calls:      %d (%d real, %d cached)\n",
		result.Stats.Oracle.Calls, result.Stats.Oracle.RealCalls, result.Stats.Oracle.CacheHits)
	if result.Stats.Oracle.Failures > 0 {
		fmt.Printf("Oracle failures:   %d\n", result.Stats.Oracle.Failures)
	}
	fmt.Printf("Duration:          %s\n", result.Stats.Duration)
	fmt.Printf("Grammar saved to:  %s\n", grammarFile)
}
