/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logs.go
Description: Log maintenance command for the Arvada CLI. Rotates and compresses
oversized log files, enforces the retention policy, and prints an analysis of past
mining runs recovered from the log directory.
*/

package commands

import (
	"fmt"

	"github.com/rifatarefin/arvada/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunLogs implements the logs command
func RunLogs(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dir := viper.GetString("log_dir")
	manager := logging.NewLogManager(
		dir,
		viper.GetInt("log_max_files"),
		viper.GetInt64("log_max_size"),
		viper.GetBool("log_compress"),
	)

	if viper.GetBool("rotate_logs") {
		if err := manager.RotateLogs(); err != nil {
			return fmt.Errorf("failed to rotate logs: %w", err)
		}
		if err := manager.CleanupOldLogs(); err != nil {
			return fmt.Errorf("failed to clean up logs: %w", err)
		}
		fmt.Println("🔄 Log rotation and cleanup complete")
	}

	stats, err := manager.GetLogStats()
	if err != nil {
		return fmt.Errorf("failed to collect log stats: %w", err)
	}
	fmt.Printf("📁 Log directory: %s\n", dir)
	fmt.Printf("   Files: %d (%d compressed), total %d bytes\n",
		stats.TotalFiles, stats.CompressedFiles, stats.TotalSize)

	if stats.TotalFiles == 0 {
		return nil
	}

	analysis, err := logging.NewLogAnalyzer(dir).AnalyzeLogs()
	if err != nil {
		return fmt.Errorf("failed to analyze logs: %w", err)
	}
	fmt.Println()
	fmt.Println(analysis.GetLogSummary())
	return nil
}
