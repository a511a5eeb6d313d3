/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_writer.go
Description: Utility for writing mining run reports to the reports directory.
Handles timestamped, run-scoped, and type-specific subdirectory naming.
Ensures directories exist and writes JSON files for easy analysis.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteRunReport writes a run report to the reports directory with timestamp, type, and run id
func WriteRunReport(reportType string, runID string, result interface{}) (string, error) {
	// Ensure reports directory and subdirectory exist
	reportsDir := filepath.Join("reports", reportType)
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	// Shorten the run id for the filename
	if len(runID) > 8 {
		runID = runID[:8]
	}

	// Generate filename: 2026-08-30_01-30-00_mining_1f2e3d4c.json
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%s.json", timestamp, reportType, runID)
	filePath := filepath.Join(reportsDir, filename)

	// Marshal result to JSON
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	// Write to file
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return filePath, nil
}
