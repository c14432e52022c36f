package vcs

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/shinji-kodama/create-liveview/internal/model"
)

// headsPrefix is the ref namespace of branches in `git ls-remote` output.
const headsPrefix = "refs/heads/"

// Manager runs git subcommands through the git CLI.
//
// The zero value uses the "git" binary found on PATH.
type Manager struct {
	// Binary overrides the git executable. Empty means "git".
	Binary string
}

// NewManager creates a new Manager using git from PATH.
func NewManager() *Manager {
	return &Manager{}
}

// Available reports whether the git binary can be found.
func (m *Manager) Available() bool {
	_, err := exec.LookPath(m.binary())
	return err == nil
}

// IsRepo reports whether dir is inside a git working tree.
//
// It runs `git status` in dir: any failure (not a repository, dir missing,
// git broken) counts as "not a repository", and the caller offers to
// create one.
func (m *Manager) IsRepo(ctx context.Context, dir string) bool {
	_, err := m.runGit(ctx, dir, "status")
	return err == nil
}

// Init creates a new repository in dir.
func (m *Manager) Init(ctx context.Context, dir string) error {
	_, err := m.runGit(ctx, dir, "init")
	return err
}

// AddAll stages every file in dir (`git add .`).
func (m *Manager) AddAll(ctx context.Context, dir string) error {
	_, err := m.runGit(ctx, dir, "add", ".")
	return err
}

// Commit records the staged changes in dir with message.
func (m *Manager) Commit(ctx context.Context, dir, message string) error {
	_, err := m.runGit(ctx, dir, "commit", "-m", message)
	return err
}

// Clone makes a shallow single-branch clone of url at ref into dir.
//
// This runs `git clone --depth 1 --branch <ref> <url> <dir>`. dir must not
// exist or must be empty. An empty ref clones the remote's default branch.
func (m *Manager) Clone(ctx context.Context, url, ref, dir string) error {
	args := []string{"clone", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, dir)

	_, err := m.runGit(ctx, "", args...)
	return err
}

// ListRemoteHeads returns the branch names of the repository at url,
// sorted.
//
// It runs `git ls-remote --heads <url>`, whose output has one
// "<sha>\trefs/heads/<name>" line per branch.
func (m *Manager) ListRemoteHeads(ctx context.Context, url string) ([]string, error) {
	output, err := m.runGit(ctx, "", "ls-remote", "--heads", url)
	if err != nil {
		return nil, err
	}
	return parseLsRemote(output), nil
}

func (m *Manager) binary() string {
	if m.Binary != "" {
		return m.Binary
	}
	return "git"
}

// runGit executes a git command with the given arguments.
//
// It captures both stdout and stderr. On success it returns stdout. On
// failure it returns a model.CLIError with ExitGitError, including the
// stderr output in the message for diagnostics.
//
// A non-empty dir is passed to git via the -C flag, so the process's working
// directory is never changed.
func (m *Manager) runGit(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := args
	if dir != "" {
		fullArgs = append([]string{"-C", dir}, args...)
	}

	// #nosec G204 -- args are constructed internally, not from a shell
	cmd := exec.CommandContext(ctx, m.binary(), fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}

// parseLsRemote extracts branch names from `git ls-remote --heads` output.
//
// Example input:
//
//	3f2a...	refs/heads/v5-demo
//	9c1b...	refs/heads/v5-web-template
//
// Lines without a refs/heads/ ref are ignored.
func parseLsRemote(output string) []string {
	var branches []string
	for _, line := range strings.Split(output, "\n") {
		_, ref, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(strings.TrimSpace(ref), headsPrefix)
		if !ok || name == "" {
			continue
		}
		branches = append(branches, name)
	}
	sort.Strings(branches)
	return branches
}
