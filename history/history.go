// Package history persists and loads run records under the tool-owned
// .specgo directory.
package history

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/specgo/specgo/model"
)

// Entry pairs a loaded run record with the directory it was read from.
type Entry struct {
	Record   model.RunRecord
	FullPath string
}

// Root returns the .specgo directory path from the git repository root.
func Root() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	repoRoot := strings.TrimSpace(string(output))
	specgoRoot := filepath.Join(repoRoot, ".specgo")

	if _, err := os.Stat(specgoRoot); os.IsNotExist(err) {
		return "", fmt.Errorf("no runs found in %s", specgoRoot)
	}

	return specgoRoot, nil
}

// NewRecordID returns a fresh run ID: 16 random bytes, hex encoded.
func NewRecordID() (string, error) {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("failed to generate run ID: %w", err)
	}
	return hex.EncodeToString(idBytes), nil
}

// Save writes a run record to <root>/<timestamp>-<shortid>/report.json and
// returns the run directory.
func Save(root string, rec model.RunRecord) (string, error) {
	shortID := rec.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	runDir := filepath.Join(root, fmt.Sprintf("%s-%s", rec.Timestamp.UTC().Format("20060102-150405"), shortID))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "report.json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run record: %w", err)
	}
	return runDir, nil
}

// LoadEntries loads all run records found under root.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			reportPath := filepath.Join(path, "report.json")
			if _, err := os.Stat(reportPath); err == nil {
				rec, err := parseRecordJSON(reportPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", reportPath).Msg("Failed to parse report.json")
					return nil
				}

				entries = append(entries, Entry{
					Record:   rec,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return entries, nil
}

func parseRecordJSON(reportPath string) (model.RunRecord, error) {
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return model.RunRecord{}, err
	}

	var rec model.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.RunRecord{}, err
	}

	return rec, nil
}
