package cli

// This file contains the list command for displaying previous runs.

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/urfave/cli/v2"

	"github.com/specgo/specgo/history"
)

func (a *App) list(ctx *cli.Context) error {
	filterPath := ctx.String("path")
	limit := ctx.Int("limit")

	// Get specgo root directory
	specgoRoot, err := history.Root()
	if err != nil {
		return err
	}

	// Load all run records
	entries, err := history.LoadEntries(a.logger, specgoRoot)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	// Apply path filter if specified
	var filtered []history.Entry
	for _, entry := range entries {
		if filterPath == "" || strings.Contains(entry.Record.WorkDir, filterPath) {
			filtered = append(filtered, entry)
		}
	}

	if len(filtered) == 0 {
		if filterPath != "" {
			fmt.Printf("No runs found matching path: %s\n", filterPath)
		} else {
			fmt.Println("No runs found")
		}
		return nil
	}

	// Sort by timestamp (newest first)
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Record.Timestamp.After(filtered[j].Record.Timestamp)
	})

	// Apply limit
	displayRuns := filtered
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	fmt.Printf("\n=== Runs (%d total) ===\n\n", len(filtered))

	for _, entry := range displayRuns {
		rec := entry.Record
		timestamp := rec.Timestamp.Format("2006-01-02 15:04:05")

		// Format duration
		duration := rec.Duration.Round(time.Millisecond)

		// Determine status indicator
		status := "✓"
		if rec.ExitCode != 0 {
			status = "✗"
		}

		// Show short ID (first 8 chars)
		shortID := rec.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Printf("%s  %s  [%s]  exit=%d  id=%s\n", status, timestamp, duration, rec.ExitCode, shortID)
		fmt.Printf("   Specs: %d total, %d passed, %d failed, %d pending, %d skipped\n",
			rec.Summary.Total, rec.Summary.Passed, rec.Summary.Failed, rec.Summary.Pending, rec.Summary.Skipped)
		if len(rec.Args) > 0 {
			fmt.Printf("   Rerun: %s\n", quoteCommand(rec.Args))
		}
		if rec.WorkDir != "" {
			fmt.Printf("   Path: %s\n", rec.WorkDir)
		}
		if rec.Git != nil && rec.Git.Commit != "" {
			shortCommit := rec.Git.Commit
			if len(shortCommit) > 8 {
				shortCommit = shortCommit[:8]
			}
			fmt.Printf("   Commit: %s", shortCommit)
			if rec.Git.Branch != "" {
				fmt.Printf(" (%s)", rec.Git.Branch)
			}
			fmt.Println()
		}
		fmt.Printf("   %s\n", entry.FullPath)
		fmt.Println()
	}

	fmt.Println("\nView a run: cat <path>/report.json")

	return nil
}

// quoteCommand renders recorded args as a copy-pasteable shell command.
func quoteCommand(args []string) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, shellescape.Quote(arg))
	}
	return strings.Join(parts, " ")
}
