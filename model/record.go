package model

import "time"

// RunRecord represents a single persisted specgo run.
// It contains the environment of the run plus its report.
type RunRecord struct {
	// Unique ID for this run (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Timestamp when the run started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory where the run was started
	WorkDir string `json:"workdir"`
	// Exit code of the run (0 unless any spec failed)
	ExitCode int `json:"exit_code"`
	// Duration of the run
	Duration time.Duration `json:"duration"`
	// Git information
	Git *Git `json:"git,omitempty"`
	// Summary counts of the run
	Summary Summary `json:"summary"`
	// Results in declaration order
	Results []SpecResult `json:"results,omitempty"`
}

// Git contains git repository information
type Git struct {
	// Git commit hash at time of the run
	Commit string `json:"commit,omitempty"`
	// Git branch at time of the run
	Branch string `json:"branch,omitempty"`
	// Repository name
	Repo string `json:"repo,omitempty"`
}
