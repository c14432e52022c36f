// Package template fetches a project template into a new project
// directory: a shallow git clone of one branch, copied without its git
// metadata, with the npm manifest renamed after the project.
//
// It also selects the latest-generation branches of a template repository
// for the branch menu.
package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/shinji-kodama/create-liveview/internal/model"
)

// Cloner fetches a template into a destination directory.
type Cloner interface {
	Clone(ctx context.Context, req CloneRequest) (*CloneResult, error)
}

// CloneRequest describes one template fetch.
type CloneRequest struct {
	// GitSrc is "<repository url>#<ref>". Without "#" the remote's default
	// branch is cloned.
	GitSrc string

	// SrcDir is the subdirectory of the repository to copy. "." or empty
	// copies the whole tree.
	SrcDir string

	// Dest is the project directory. It is created when missing.
	Dest string

	// UpdatePackageJSON sets the manifest "name" to the base name of Dest.
	UpdatePackageJSON bool
}

// CloneResult reports what a fetch produced.
type CloneResult struct {
	URL                string
	Ref                string
	PackageJSONUpdated bool
}

// GitClient is the subset of vcs.Manager used for fetching.
type GitClient interface {
	Clone(ctx context.Context, url, ref, dir string) error
}

// GitCloner clones with git into a temporary directory on the local disk,
// then copies the requested subtree into Fs.
type GitCloner struct {
	Git GitClient

	// Fs receives the project files.
	Fs afero.Fs

	// TempDir is the parent of the temporary checkout. Empty means
	// os.TempDir().
	TempDir string
}

// NewGitCloner creates a GitCloner writing to the local disk.
func NewGitCloner(git GitClient) *GitCloner {
	return &GitCloner{Git: git, Fs: afero.NewOsFs()}
}

// SplitGitSrc splits "<url>#<ref>" at its last "#".
func SplitGitSrc(gitSrc string) (url, ref string) {
	if i := strings.LastIndex(gitSrc, "#"); i >= 0 {
		return gitSrc[:i], gitSrc[i+1:]
	}
	return gitSrc, ""
}

// Clone fetches req.GitSrc into req.Dest.
//
// Any failure is returned as a model.CLIError with ExitTemplateFetch. Files
// already copied into Dest are left in place.
func (c *GitCloner) Clone(ctx context.Context, req CloneRequest) (*CloneResult, error) {
	url, ref := SplitGitSrc(req.GitSrc)
	if url == "" {
		return nil, model.NewCLIError(model.ExitTemplateFetch, fmt.Sprintf("invalid template source %q", req.GitSrc))
	}

	tmp, err := os.MkdirTemp(c.TempDir, "create-liveview-*")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitTemplateFetch, "failed to create temporary directory", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	checkout := filepath.Join(tmp, "checkout")
	if err := c.Git.Clone(ctx, url, ref, checkout); err != nil {
		return nil, model.WrapCLIError(model.ExitTemplateFetch,
			fmt.Sprintf("failed to clone %s (branch %s)", url, ref), err)
	}

	srcDir := checkout
	if req.SrcDir != "" && req.SrcDir != "." {
		srcDir = filepath.Join(checkout, filepath.Clean(req.SrcDir))
	}

	if err := CopyTree(afero.NewOsFs(), srcDir, c.Fs, req.Dest); err != nil {
		return nil, model.WrapCLIError(model.ExitTemplateFetch,
			fmt.Sprintf("failed to copy template into %s", req.Dest), err)
	}

	result := &CloneResult{URL: url, Ref: ref}
	if req.UpdatePackageJSON {
		updated, err := SetPackageName(c.Fs, req.Dest, filepath.Base(req.Dest))
		if err != nil {
			return nil, model.WrapCLIError(model.ExitTemplateFetch, "failed to update package.json", err)
		}
		result.PackageJSONUpdated = updated
	}
	return result, nil
}
