// Package logscan provides the stateless log-file analysis utility.
// It parses "timestamp [LEVEL] message" lines into per-level counts and a
// ranking of the most frequent ERROR messages.
package logscan

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// TopErrorCount is how many distinct ERROR messages a Report carries.
const TopErrorCount = 5

// ErrorCount is one ranked ERROR message.
type ErrorCount struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Report is the outcome of analyzing one log file.
type Report struct {
	LevelCounts map[string]int `json:"log_level_counts"`
	TopErrors   []ErrorCount   `json:"top_errors"`
}

// Analyze scans the log file at path. Lines without a bracketed level token
// are ignored. ERROR messages are grouped by exact text and ranked by
// descending count; ties keep first-seen order. The returned error wraps the
// underlying open failure, so errors.Is(err, os.ErrNotExist) works.
func Analyze(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	report := &Report{LevelCounts: make(map[string]int)}

	errorCounts := make(map[string]int)
	var errorOrder []string // first-seen order, for deterministic ties

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		start := strings.Index(line, "[")
		end := strings.Index(line, "]")
		if start < 0 || end < 0 || end < start {
			continue
		}

		level := line[start+1 : end]
		report.LevelCounts[level]++

		if level == "ERROR" {
			message := strings.TrimSpace(line[end+1:])
			if errorCounts[message] == 0 {
				errorOrder = append(errorOrder, message)
			}
			errorCounts[message]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log file: %w", err)
	}

	// Stable sort over first-seen order keeps the tie-break deterministic.
	ranked := make([]ErrorCount, 0, len(errorOrder))
	for _, msg := range errorOrder {
		ranked = append(ranked, ErrorCount{Message: msg, Count: errorCounts[msg]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > TopErrorCount {
		ranked = ranked[:TopErrorCount]
	}
	report.TopErrors = ranked

	return report, nil
}
