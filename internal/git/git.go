// Package git provides the repository queries watch mode needs to
// scope runs to changed files.
package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git commands in a working directory.
type Runner struct {
	Dir string // working directory for git commands
}

// NewRunner creates a Runner for the given directory.
func NewRunner(dir string) *Runner {
	return &Runner{Dir: dir}
}

// IsRepo reports whether the directory is inside a git work tree.
func (r *Runner) IsRepo() bool {
	out, err := r.run("rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// CurrentBranch returns the name of the current git branch.
func (r *Runner) CurrentBranch() (string, error) {
	out, err := r.run("branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("git current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// HasUncommittedChanges returns true if the working tree or index has changes.
func (r *Runner) HasUncommittedChanges() (bool, error) {
	out, err := r.run("status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// ChangedFiles returns the paths touched by uncommitted changes, staged
// or not, relative to the repository root. Renames report the new path.
func (r *Runner) ChangedFiles() ([]string, error) {
	out, err := r.run("status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git changed files: %w", err)
	}
	return parsePorcelain(out), nil
}

// LastCommitFiles returns the paths touched by the most recent commit.
// Together with ChangedFiles this approximates "what moved since the
// last green run" when the working tree is clean.
func (r *Runner) LastCommitFiles() ([]string, error) {
	out, err := r.run("diff-tree", "--no-commit-id", "--name-only", "-r", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("git last commit files: %w", err)
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// parsePorcelain extracts file paths from `git status --porcelain` output.
func parsePorcelain(out string) []string {
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		path := strings.TrimSpace(line[3:])
		// Renames read "old -> new"; the new path is the one that matters.
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		path = strings.Trim(path, `"`)
		if path != "" {
			files = append(files, path)
		}
	}
	return files
}

// run executes a git command and returns its combined output.
func (r *Runner) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("%s: %w", errMsg, err)
	}
	return stdout.String(), nil
}
