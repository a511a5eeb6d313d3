/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the Arvada grammar miner. Provides
comprehensive command-line options, configuration management, and beautiful user
interface for controlling grammar mining, sampling, and evaluation with advanced
logging capabilities.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rifatarefin/arvada/cmd/arvada/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Configuration
	configFile string
	logLevel   string
	jsonLogs   bool

	// Oracle configuration
	oracleCommand string
	oracleArgs    []string
	oracleTimeout time.Duration

	// Input configuration
	trainDir string
	testDir  string

	// Search configuration
	workers       int
	tolerance     float64
	maxIterations int
	maxTime       time.Duration
	maxProbes     int
	minChunkLen   int
	expandTokens  bool

	// Generation configuration
	seed     int64
	maxDepth int
	count    int

	// Output configuration
	grammarFile string
	outputDir   string

	// Logging configuration
	logDir      string
	logFormat   string
	logMaxFiles int
	logMaxSize  int64
	logCompress bool
	rotateLogs  bool
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "arvada",
		Short: "Arvada - Oracle-guided context-free grammar miner",
		Long: `Arvada is a grammar mining engine that learns a context-free grammar for an
unknown language from a handful of positive examples and a black-box validity oracle.
It generalizes derivation trees through oracle-validated bubbling and coalescing,
then extracts, expands, and minimizes the resulting grammar for sampling and parsing.`,
		Version: "1.0.0",
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Use JSON log format")

	// Add logging-specific flags
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Int64Var(&logMaxSize, "log-max-size", 100*1024*1024, "Maximum log file size in bytes")
	rootCmd.PersistentFlags().BoolVar(&logCompress, "log-compress", false, "Compress rotated log files")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_max_size", rootCmd.PersistentFlags().Lookup("log-max-size"))
	viper.BindPFlag("log_compress", rootCmd.PersistentFlags().Lookup("log-compress"))

	// Add learn command. Shared keys like grammar_file and seed are
	// bound at pre-run time so each command owns them while it runs.
	learnCmd := &cobra.Command{
		Use:   "learn",
		Short: "Mine a grammar from training examples and an oracle",
		Long: `Mine a context-free grammar from a directory of positive training examples and
an external validity oracle. The miner builds derivation trees, searches over
oracle-validated generalizations to a fixed point, and writes the minimized grammar.`,
		RunE: commands.RunLearn,
	}

	// Add learn command flags
	learnCmd.Flags().StringVar(&oracleCommand, "oracle", "", "External oracle command, invoked as '<cmd> <file>' (required)")
	learnCmd.Flags().StringSliceVar(&oracleArgs, "oracle-args", []string{}, "Extra arguments placed before the candidate file")
	learnCmd.Flags().DurationVar(&oracleTimeout, "oracle-timeout", 3*time.Second, "Per-invocation timeout for the oracle")

	learnCmd.Flags().StringVar(&trainDir, "train", "", "Directory containing training examples (required)")

	learnCmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel probe workers (0 = auto-detect)")
	learnCmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Fraction of probes allowed to fail per merge")
	learnCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Search budget in evaluated candidates (0 = unbounded)")
	learnCmd.Flags().DurationVar(&maxTime, "max-time", 0, "Overall run budget (0 = unbounded)")
	learnCmd.Flags().IntVar(&maxProbes, "max-probes", 32, "Cap on probe strings per candidate")
	learnCmd.Flags().IntVar(&minChunkLen, "min-chunk-len", 2, "Minimum length for a repeated substring to become a chunk")
	learnCmd.Flags().BoolVar(&expandTokens, "expand-tokens", true, "Generalize digit terminals to builtin token classes")

	learnCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the sampling RNG")
	learnCmd.Flags().StringVar(&grammarFile, "output", "./mined.gramdict", "Path for the persisted grammar")

	// Mark required flags
	learnCmd.MarkFlagRequired("oracle")
	learnCmd.MarkFlagRequired("train")

	// Bind flags to viper
	learnCmd.PreRun = func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("oracle_command", cmd.Flags().Lookup("oracle"))
		viper.BindPFlag("oracle_args", cmd.Flags().Lookup("oracle-args"))
		viper.BindPFlag("oracle_timeout", cmd.Flags().Lookup("oracle-timeout"))
		viper.BindPFlag("train_dir", cmd.Flags().Lookup("train"))
		viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
		viper.BindPFlag("tolerance", cmd.Flags().Lookup("tolerance"))
		viper.BindPFlag("max_iterations", cmd.Flags().Lookup("max-iterations"))
		viper.BindPFlag("max_time", cmd.Flags().Lookup("max-time"))
		viper.BindPFlag("max_probes", cmd.Flags().Lookup("max-probes"))
		viper.BindPFlag("min_chunk_len", cmd.Flags().Lookup("min-chunk-len"))
		viper.BindPFlag("expand_tokens", cmd.Flags().Lookup("expand-tokens"))
		viper.BindPFlag("seed", cmd.Flags().Lookup("seed"))
		viper.BindPFlag("grammar_file", cmd.Flags().Lookup("output"))
	}

	rootCmd.AddCommand(learnCmd)

	// Add generate command
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Sample strings from a mined grammar",
		Long: `Sample strings from a previously mined grammar. Sampling is depth-bounded and
seeded, so a fixed seed reproduces the same strings. Samples print to stdout or
write one file per sample into an output directory.`,
		RunE: commands.RunGenerate,
	}

	// Add generate flags
	generateCmd.Flags().StringVar(&grammarFile, "grammar", "", "Path to the mined grammar (required)")
	generateCmd.Flags().IntVar(&count, "count", 10, "Number of samples to generate")
	generateCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the sampling RNG")
	generateCmd.Flags().IntVar(&maxDepth, "max-depth", 16, "Recursion-depth cap for sampling")
	generateCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for sample files (stdout when empty)")

	generateCmd.MarkFlagRequired("grammar")

	generateCmd.PreRun = func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("grammar_file", cmd.Flags().Lookup("grammar"))
		viper.BindPFlag("sample_count", cmd.Flags().Lookup("count"))
		viper.BindPFlag("seed", cmd.Flags().Lookup("seed"))
		viper.BindPFlag("max_depth", cmd.Flags().Lookup("max-depth"))
		viper.BindPFlag("output_dir", cmd.Flags().Lookup("output-dir"))
	}

	rootCmd.AddCommand(generateCmd)

	// Add evaluate command
	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure precision and recall of a mined grammar",
		Long: `Evaluate a mined grammar against the oracle and a held-out test set. Precision
is the fraction of grammar samples the oracle accepts; recall is the fraction of
held-out examples the grammar derives.`,
		RunE: commands.RunEvaluate,
	}

	// Add evaluate flags
	evaluateCmd.Flags().StringVar(&grammarFile, "grammar", "", "Path to the mined grammar (required)")
	evaluateCmd.Flags().StringVar(&oracleCommand, "oracle", "", "External oracle command for precision")
	evaluateCmd.Flags().StringSliceVar(&oracleArgs, "oracle-args", []string{}, "Extra arguments placed before the candidate file")
	evaluateCmd.Flags().DurationVar(&oracleTimeout, "oracle-timeout", 3*time.Second, "Per-invocation timeout for the oracle")
	evaluateCmd.Flags().StringVar(&testDir, "test", "", "Directory of held-out examples for recall")
	evaluateCmd.Flags().IntVar(&count, "count", 100, "Number of samples for precision")
	evaluateCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the sampling RNG")
	evaluateCmd.Flags().IntVar(&maxDepth, "max-depth", 16, "Recursion-depth cap for sampling")

	evaluateCmd.MarkFlagRequired("grammar")

	evaluateCmd.PreRun = func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("grammar_file", cmd.Flags().Lookup("grammar"))
		viper.BindPFlag("oracle_command", cmd.Flags().Lookup("oracle"))
		viper.BindPFlag("oracle_args", cmd.Flags().Lookup("oracle-args"))
		viper.BindPFlag("oracle_timeout", cmd.Flags().Lookup("oracle-timeout"))
		viper.BindPFlag("test_dir", cmd.Flags().Lookup("test"))
		viper.BindPFlag("sample_count", cmd.Flags().Lookup("count"))
		viper.BindPFlag("seed", cmd.Flags().Lookup("seed"))
		viper.BindPFlag("max_depth", cmd.Flags().Lookup("max-depth"))
	}

	rootCmd.AddCommand(evaluateCmd)

	// Add show command for grammar inspection
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Pretty-print a mined grammar",
		Long: `Load a mined grammar and print its productions in a readable BNF-like form,
start class first, with per-class alternative counts.`,
		RunE: commands.RunShow,
	}

	showCmd.Flags().StringVar(&grammarFile, "grammar", "", "Path to the mined grammar (required)")
	showCmd.MarkFlagRequired("grammar")
	showCmd.PreRun = func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("grammar_file", cmd.Flags().Lookup("grammar"))
	}

	rootCmd.AddCommand(showCmd)

	// Add logs command for log maintenance
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Rotate, clean up, and analyze run logs",
		Long: `Maintain the log directory: rotate and optionally compress oversized log files,
enforce the retention policy, and print an analysis of past mining runs.`,
		RunE: commands.RunLogs,
	}

	logsCmd.Flags().BoolVar(&rotateLogs, "rotate", false, "Rotate oversized files and enforce retention before analyzing")
	logsCmd.PreRun = func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("rotate_logs", cmd.Flags().Lookup("rotate"))
	}

	rootCmd.AddCommand(logsCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
