/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: Arvada.go
Description: Standalone mining harness. Runs the grammar miner end to end against a built-in arithmetic-expression oracle, samples the mined grammar, and checks the samples back against the oracle. Writes detailed HTML/JSON reports to ./mine_output. Modular, clean, and beautiful.
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rifatarefin/arvada/pkg/engine"
	"github.com/rifatarefin/arvada/pkg/grammar"
	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/rifatarefin/arvada/pkg/oracle"
	"github.com/sirupsen/logrus"
)

type MineReport struct {
	Status     string   `json:"status"`
	Iterations int      `json:"iterations"`
	Committed  int      `json:"committed"`
	Rejected   int      `json:"rejected"`
	Classes    int      `json:"classes"`
	Size       int      `json:"size"`
	Calls      int64    `json:"oracle_calls"`
	Duration   string   `json:"duration"`
	Samples    []Sample `json:"samples"`
	Grammar    string   `json:"grammar"`
}

type Sample struct {
	Input string `json:"input"`
	Valid bool   `json:"valid"`
}

// isArithmetic accepts sums of nonnegative integers, like "1+1" and "23+4+56"
func isArithmetic(s string) bool {
	if s == "" {
		return false
	}
	for _, term := range strings.Split(s, "+") {
		if term == "" {
			return false
		}
		for i := 0; i < len(term); i++ {
			if term[i] < '0' || term[i] > '9' {
				return false
			}
		}
	}
	return true
}

func main() {
	outputDir := "./mine_output"
	os.MkdirAll(outputDir, 0755)

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	examples := []string{"1+1", "2+3", "1+1+1"}
	config := &interfaces.MinerConfig{
		Workers:      4,
		MaxProbes:    32,
		MinChunkLen:  2,
		ExpandTokens: true,
		Seed:         42,
		MaxDepth:     12,
	}

	miner := engine.NewEngine(config, oracle.NewFuncOracle(isArithmetic), logger)
	result, err := miner.Mine(context.Background(), examples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mining failed: %v\n", err)
		os.Exit(1)
	}

	report := MineReport{
		Status:     result.Status.String(),
		Iterations: result.Stats.Iterations,
		Committed:  result.Stats.Committed,
		Rejected:   result.Stats.Rejected,
		Classes:    len(result.Grammar.Rules),
		Size:       result.Grammar.Size(),
		Calls:      result.Stats.Oracle.Calls,
		Duration:   result.Stats.Duration.String(),
		Grammar:    result.Grammar.String(),
	}

	// Sample the mined grammar and check each sample back against the oracle
	sampler, err := grammar.NewSampler(result.Grammar, config.Seed, config.MaxDepth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sampler failed: %v\n", err)
		os.Exit(1)
	}
	samples, err := sampler.Sample(25)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sampling failed: %v\n", err)
		os.Exit(1)
	}
	for _, s := range samples {
		report.Samples = append(report.Samples, Sample{Input: s, Valid: isArithmetic(s)})
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	jsonPath := filepath.Join(outputDir, fmt.Sprintf("arvada_mine_report_%s.json", timestamp))
	htmlPath := filepath.Join(outputDir, fmt.Sprintf("arvada_mine_report_%s.html", timestamp))
	jsonData, _ := json.MarshalIndent(report, "", "  ")
	os.WriteFile(jsonPath, jsonData, 0644)
	writeHTMLReport(htmlPath, &report)

	fmt.Printf("Mined %d classes (%s) in %s, report at %s\n",
		report.Classes, report.Status, report.Duration, htmlPath)
}

func writeHTMLReport(path string, report *MineReport) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString("<html><head><title>Arvada Mine Report</title><style>body{font-family:sans-serif;}table{border-collapse:collapse;}th,td{border:1px solid #ccc;padding:4px;}th{background:#eee;}tr.valid{background:#dfd;}tr.invalid{background:#fdd;}</style></head><body>")
	f.WriteString("<h1>Arvada Mine Report</h1>")
	f.WriteString(fmt.Sprintf("<p>Status: %s | Iterations: %d | Committed: %d | Rejected: %d | Oracle calls: %d | Duration: %s</p>",
		report.Status, report.Iterations, report.Committed, report.Rejected, report.Calls, report.Duration))
	f.WriteString(fmt.Sprintf("<h2>Grammar (%d classes, %d symbols)</h2><pre>%s</pre>", report.Classes, report.Size, htmlEscape(report.Grammar)))
	f.WriteString("<h2>Samples</h2><table><tr><th>Input</th><th>Oracle</th></tr>")
	for _, s := range report.Samples {
		rowClass := "invalid"
		verdict := "rejected"
		if s.Valid {
			rowClass = "valid"
			verdict = "accepted"
		}
		f.WriteString(fmt.Sprintf("<tr class='%s'><td><pre>%s</pre></td><td>%s</td></tr>", rowClass, htmlEscape(s.Input), verdict))
	}
	f.WriteString("</table></body></html>")
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}
