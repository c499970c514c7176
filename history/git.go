package history

import (
	"os/exec"
	"strings"

	"github.com/specgo/specgo/model"
)

// GitInfo captures the current commit and branch, or nil when not in a git
// repository. Failures are non-fatal by design of the callers.
func GitInfo() *model.Git {
	commit, err := gitOutput("rev-parse", "HEAD")
	if err != nil {
		return nil
	}
	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil
	}
	return &model.Git{Commit: commit, Branch: branch}
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
