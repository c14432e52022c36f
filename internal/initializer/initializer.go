// Package initializer scaffolds a new project from a template: it collects
// the run parameters, fetches the template, rewrites its placeholders with
// the project identity, generates the help and README files, removes
// template-authoring files, and commits the result to git.
//
// Every collaborator (prompter, cloner, help runner, git, file-store) is
// injected through Deps, so the whole sequence runs in tests against fakes
// and an in-memory file-store.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/shinji-kodama/create-liveview/internal/config"
	"github.com/shinji-kodama/create-liveview/internal/helpgen"
	"github.com/shinji-kodama/create-liveview/internal/model"
	"github.com/shinji-kodama/create-liveview/internal/naming"
	"github.com/shinji-kodama/create-liveview/internal/profile"
	"github.com/shinji-kodama/create-liveview/internal/rewrite"
	"github.com/shinji-kodama/create-liveview/internal/selector"
	"github.com/shinji-kodama/create-liveview/internal/template"
)

// Prompts and progress lines written to Deps.Out.
const (
	destQuestion = "project directory: "
	gitQuestion  = "Do you want to init a git repo? (Y/n): "
)

// VCS is the subset of vcs.Manager the initializer uses.
type VCS interface {
	Available() bool
	IsRepo(ctx context.Context, dir string) bool
	Init(ctx context.Context, dir string) error
	AddAll(ctx context.Context, dir string) error
	Commit(ctx context.Context, dir, message string) error
	ListRemoteHeads(ctx context.Context, url string) ([]string, error)
}

// Deps are the collaborators of an Initializer.
type Deps struct {
	Config   *config.Config
	Profile  *profile.Profile
	Prompter selector.Prompter
	Cloner   template.Cloner
	Help     helpgen.Runner
	Git      VCS

	// Fs is the file-store holding the project. Nil means the local disk.
	Fs afero.Fs

	// Out receives menus and progress lines. Nil discards them.
	Out io.Writer

	// Username returns the OS user name used in rewritten files. Nil uses
	// the current user.
	Username func() string

	// RemoteBranches extends the branch menu with the latest-generation
	// branches of the template repository.
	RemoteBranches bool
}

// Initializer runs the scaffolding sequence.
type Initializer struct {
	Deps
}

// New returns an Initializer with defaults filled in for optional deps.
func New(d Deps) *Initializer {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.Username == nil {
		d.Username = currentUsername
	}
	return &Initializer{Deps: d}
}

// Run scaffolds a project. Parameters already set in params are not asked.
//
// Every collaborator failure is fatal and returned as a model.CLIError.
// Nothing is rolled back: files already written to the destination stay.
func (in *Initializer) Run(ctx context.Context, params model.Params) (*model.Result, error) {
	params, err := in.collectParams(ctx, params)
	if err != nil {
		return nil, err
	}

	result := &model.Result{
		Params:    params,
		RepoURL:   in.Config.RepoURL(),
		ReadmeURL: in.Config.ReadmeURL(params.Branch),
	}

	fmt.Fprintf(in.Out, "Copying %s (%s) template to: %s ...\n", in.Config.RepoName, params.Branch, params.Dest)
	if _, err := in.Cloner.Clone(ctx, template.CloneRequest{
		GitSrc:            in.Config.GitSrc(params.Branch),
		SrcDir:            ".",
		Dest:              params.Dest,
		UpdatePackageJSON: true,
	}); err != nil {
		return nil, err
	}

	result.Identity = naming.Derive(filepath.Base(params.Dest))
	values := in.values(result)
	slog.Debug("derived project identity",
		"projectName", result.Identity.ProjectName,
		"shortName", result.Identity.ShortName,
		"shortSiteName", result.Identity.ShortSiteName,
		"siteName", result.Identity.SiteName,
	)

	if result.Rewritten, err = in.rewriteFiles(params.Dest, values); err != nil {
		return nil, err
	}
	if err := in.generateHelp(ctx, params.Dest); err != nil {
		return nil, err
	}
	if err := in.writeReadme(params.Dest, values); err != nil {
		return nil, err
	}
	if result.Removed, err = in.cleanup(params.Dest, params.Lang); err != nil {
		return nil, err
	}
	if err := in.commit(ctx, result, values); err != nil {
		return nil, err
	}

	steps, err := profile.RenderText("next_steps", in.Profile.NextSteps, values)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to render next steps", err)
	}
	result.NextSteps = strings.TrimSpace(steps)
	return result, nil
}

// collectParams asks for every parameter left empty: language, then branch,
// then destination.
func (in *Initializer) collectParams(ctx context.Context, p model.Params) (model.Params, error) {
	menuValues := profile.Values{
		RepoName: in.Config.RepoName,
		RepoURL:  in.Config.RepoURL(),
	}

	if p.Lang == "" {
		menu, err := profile.RenderMenu(in.Profile.Languages, menuValues)
		if err != nil {
			return p, model.WrapCLIError(model.ExitGeneralError, "failed to render language menu", err)
		}
		sel, err := selector.Ask(ctx, in.Prompter, in.Out, menu)
		if err != nil {
			return p, promptError(err)
		}
		p.Lang = model.ParseLanguage(sel.String())
		fmt.Fprintf(in.Out, "chosen language: %s\n", p.Lang)
	} else {
		p.Lang = model.ParseLanguage(p.Lang.String())
	}
	if !p.Lang.IsKnown() {
		slog.Warn("unknown language, no localized readme will be kept", "lang", p.Lang)
	}

	if p.Branch == "" {
		menu, err := profile.RenderMenu(in.Profile.Branches, menuValues)
		if err != nil {
			return p, model.WrapCLIError(model.ExitGeneralError, "failed to render branch menu", err)
		}
		if in.RemoteBranches {
			menu.Options = in.withRemoteBranches(ctx, menu.Options)
		}
		sel, err := selector.Ask(ctx, in.Prompter, in.Out, menu)
		if err != nil {
			return p, promptError(err)
		}
		p.Branch = sel.String()
		fmt.Fprintf(in.Out, "chosen template: %s\n", p.Branch)
	}

	if p.Dest == "" {
		dest, err := selector.AskNonEmpty(ctx, in.Prompter, destQuestion)
		if err != nil {
			return p, promptError(err)
		}
		p.Dest = dest
	}

	slog.Debug("collected parameters", "branch", p.Branch, "dest", p.Dest, "lang", p.Lang)
	return p, nil
}

// withRemoteBranches appends the latest-generation remote branches missing
// from options. A listing failure keeps the recommended options only.
func (in *Initializer) withRemoteBranches(ctx context.Context, options []string) []string {
	heads, err := in.Git.ListRemoteHeads(ctx, in.Config.RepoURL())
	if err != nil {
		slog.Warn("failed to list remote branches", "repo", in.Config.RepoURL(), "error", err)
		return options
	}

	seen := make(map[string]bool, len(options))
	for _, o := range options {
		seen[model.FirstToken(o)] = true
	}

	out := append([]string(nil), options...)
	for _, b := range template.LatestBranches(heads) {
		if !seen[b] {
			out = append(out, b)
			seen[b] = true
		}
	}
	return out
}

// values returns the template data for the current run.
func (in *Initializer) values(r *model.Result) profile.Values {
	return profile.Values{
		Identity:  r.Identity,
		Username:  in.Username(),
		RepoName:  in.Config.RepoName,
		RepoURL:   r.RepoURL,
		ReadmeURL: r.ReadmeURL,
		Branch:    r.Params.Branch,
		Dest:      r.Params.Dest,
		Lang:      r.Params.Lang.String(),
	}
}

// rewriteFiles applies each rewrite target of the profile in order and
// returns the relative paths of the files that changed.
func (in *Initializer) rewriteFiles(dest string, v profile.Values) ([]string, error) {
	var changed []string
	for _, target := range in.Profile.Rewrites {
		rules, err := profile.RenderRules(target, v)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("failed to render rules for %s", target.File), err)
		}
		for _, r := range profile.NonIdempotent(rules) {
			slog.Warn("rewrite rule is not idempotent", "file", target.File, "rule", r.String())
		}

		ok, err := rewrite.File(in.Fs, filepath.Join(dest, target.File), rules)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("failed to rewrite %s", target.File), err)
		}
		slog.Debug("rewrote file", "file", target.File, "changed", ok)
		if ok {
			changed = append(changed, target.File)
		}
	}
	return changed, nil
}

// generateHelp runs the template's help script and stores its output.
func (in *Initializer) generateHelp(ctx context.Context, dest string) error {
	if in.Profile.HelpScript == "" {
		return nil
	}

	script := filepath.Join(dest, in.Profile.HelpScript)
	exists, err := afero.Exists(in.Fs, script)
	if err != nil {
		return model.WrapCLIError(model.ExitHelpScript, fmt.Sprintf("failed to check %s", in.Profile.HelpScript), err)
	}
	if !exists {
		return model.NewCLIError(model.ExitHelpScript, fmt.Sprintf("help script %s not found in template", in.Profile.HelpScript))
	}

	text, err := in.Help.Run(ctx, dest, in.Profile.HelpScript)
	if err != nil {
		return err
	}

	out := filepath.Join(dest, in.Profile.HelpOutput)
	if err := afero.WriteFile(in.Fs, out, []byte(text), 0o644); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("failed to write %s", in.Profile.HelpOutput), err)
	}
	return nil
}

// writeReadme replaces the template README with a short project README.
func (in *Initializer) writeReadme(dest string, v profile.Values) error {
	text, err := profile.RenderText("readme", in.Profile.Readme, v)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to render README", err)
	}
	if err := afero.WriteFile(in.Fs, filepath.Join(dest, "README.md"), []byte(text), 0o644); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to write README.md", err)
	}
	return nil
}

// cleanup removes template-authoring files and the readme variants of the
// other languages. Missing files are skipped. It returns the removed paths.
func (in *Initializer) cleanup(dest string, lang model.Language) ([]string, error) {
	_, otherReadmes := in.Profile.LocaleReadmesFor(lang)
	files := append(append([]string(nil), in.Profile.Cleanup...), otherReadmes...)

	var removed []string
	for _, f := range files {
		path := filepath.Join(dest, f)
		exists, err := afero.Exists(in.Fs, path)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("failed to check %s", f), err)
		}
		if !exists {
			continue
		}
		if err := in.Fs.Remove(path); err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("failed to remove %s", f), err)
		}
		removed = append(removed, f)
	}
	return removed, nil
}

// commit offers to create a repository when dest is not inside one, then
// commits every file when a repository exists.
func (in *Initializer) commit(ctx context.Context, r *model.Result, v profile.Values) error {
	dest := r.Params.Dest
	if !in.Git.Available() {
		slog.Warn("git is not installed, skipping repository setup")
		return nil
	}

	if !in.Git.IsRepo(ctx, dest) {
		answer, err := in.Prompter.Ask(ctx, gitQuestion)
		if err != nil {
			return promptError(err)
		}
		if answer == "" {
			fmt.Fprintln(in.Out, "default: yes")
			answer = "y"
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			if err := in.Git.Init(ctx, dest); err != nil {
				return err
			}
			r.GitInitialized = true
		}
	}

	if !in.Git.IsRepo(ctx, dest) {
		return nil
	}

	msg, err := profile.RenderText("commit_message", in.Profile.CommitMessage, v)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to render commit message", err)
	}
	if err := in.Git.AddAll(ctx, dest); err != nil {
		return err
	}
	if err := in.Git.Commit(ctx, dest, msg); err != nil {
		return err
	}
	r.GitCommitted = true
	return nil
}

// promptError maps prompter failures to exit codes: an interrupted prompt
// is a cancellation, closed input is a general error.
func promptError(err error) error {
	switch {
	case errors.Is(err, selector.ErrAborted), errors.Is(err, context.Canceled):
		return model.WrapCLIError(model.ExitUserCancelled, "cancelled", err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return model.WrapCLIError(model.ExitGeneralError, "input closed before all parameters were given", err)
	default:
		return model.WrapCLIError(model.ExitGeneralError, "failed to read input", err)
	}
}

// currentUsername returns the OS login name, falling back to $USER.
func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		// Windows reports DOMAIN\user.
		if _, name, ok := strings.Cut(u.Username, `\`); ok {
			return name
		}
		return u.Username
	}
	return os.Getenv("USER")
}
