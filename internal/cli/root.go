// Package cli implements the cobra-based command line of create-liveview.
//
// The root command is the whole tool: it maps flags and the positional
// project directory to run parameters, builds the initializer from the
// environment configuration, and prints the final report. This file also
// owns the process-level error handling that turns model.CLIError values
// into exit codes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shinji-kodama/create-liveview/internal/config"
	"github.com/shinji-kodama/create-liveview/internal/helpgen"
	"github.com/shinji-kodama/create-liveview/internal/initializer"
	"github.com/shinji-kodama/create-liveview/internal/model"
	"github.com/shinji-kodama/create-liveview/internal/profile"
	"github.com/shinji-kodama/create-liveview/internal/selector"
	"github.com/shinji-kodama/create-liveview/internal/template"
	"github.com/shinji-kodama/create-liveview/internal/vcs"
)

// Global flag variables, bound to persistent flags on the root command.
var (
	// jsonOutput switches the final report and error output to JSON.
	jsonOutput bool

	// verbose lowers the log level to debug.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

const longHelp = `create-liveview creates a new ts-liveview project from a template branch.

If the branch or destination are not specified, they will be asked
interactively. The guide-message language is asked the same way.

Usage Example:

  create-liveview --branch v5-demo --dest liveview-hn --lang hk
  create-liveview --branch v5-demo liveview-hn
  create-liveview liveview-hn
  create-liveview

Environment:

  CREATE_LIVEVIEW_GIT_HOST      git server (default https://github.com)
  CREATE_LIVEVIEW_REPO_ORG      template owner (default beenotung)
  CREATE_LIVEVIEW_REPO_NAME     template repository (default ts-liveview)
  CREATE_LIVEVIEW_PROFILE       template profile YAML (default embedded)
  CREATE_LIVEVIEW_HELP_RUNNER   auto, node or docker (default auto)
  CREATE_LIVEVIEW_HELP_IMAGE    image for the docker runner (default node:lts-alpine)`

// options holds the per-invocation flag values.
type options struct {
	branch         string
	dest           string
	lang           string
	remoteBranches bool

	// destAt is the number of positional arguments parsed before the first
	// non-empty --dest, or -1 when --dest was not given.
	destAt int
}

// destFlag is the --dest value. It records where on the command line the
// destination was first set, because a positional argument only names the
// destination while none has been given yet.
type destFlag struct {
	opts  *options
	flags *pflag.FlagSet
}

func (d *destFlag) String() string { return d.opts.dest }
func (d *destFlag) Type() string   { return "string" }

func (d *destFlag) Set(v string) error {
	if v != "" && d.opts.destAt < 0 {
		d.opts.destAt = d.flags.NArg()
	}
	d.opts.dest = v
	return nil
}

// params returns the run parameters, taking the destination from the first
// positional argument when --dest is not given.
func (o *options) params(args []string) model.Params {
	p := model.Params{Branch: o.branch, Dest: o.dest, Lang: model.Language(o.lang)}
	if p.Dest == "" && len(args) > 0 {
		p.Dest = args[0]
	}
	return p
}

// runner is the part of initializer.Initializer the command drives.
type runner interface {
	Run(ctx context.Context, params model.Params) (*model.Result, error)
}

// builder constructs the runner for one invocation.
type builder func(cmd *cobra.Command, opts *options) (runner, error)

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(buildInitializer)
}

func newRootCommand(build builder) *cobra.Command {
	opts := &options{destAt: -1}

	rootCmd := &cobra.Command{
		Use:   "create-liveview [project-directory]",
		Short: "Create a ts-liveview project from a template branch",
		Long:  longHelp,

		// Errors are printed by Run, in text or JSON.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		Args: func(cmd *cobra.Command, args []string) error {
			// "liveview-hn --dest other" is accepted: the positional
			// came first and --dest overrides it.
			allowed := 1
			if opts.destAt == 0 {
				allowed = 0
			}
			if len(args) > allowed {
				return unknownArgument(cmd, opts, args[allowed])
			}
			return nil
		},

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(cmd.ErrOrStderr())
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := build(cmd, opts)
			if err != nil {
				return err
			}
			res, err := in.Run(cmd.Context(), opts.params(args))
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output the final report in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.Flags().StringVar(&opts.branch, "branch", "", "Template branch name (e.g., v5-demo)")
	rootCmd.Flags().Var(&destFlag{opts: opts, flags: rootCmd.Flags()}, "dest", "Destination project directory")
	rootCmd.Flags().StringVar(&opts.lang, "lang", "", "Guide message language: en, cn, hk")
	rootCmd.Flags().BoolVar(&opts.remoteBranches, "remote-branches", false,
		"Also offer the latest branches listed by the template repository")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if token := flagErrorToken(err); token != "" {
			return unknownArgument(cmd, opts, token)
		}
		return model.WrapCLIError(model.ExitGeneralError, "invalid arguments", err)
	})

	return rootCmd
}

// buildInitializer wires the production collaborators from the environment.
func buildInitializer(cmd *cobra.Command, opts *options) (runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	prof, err := profile.Load(cfg.Profile)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load template profile", err)
	}

	help, err := helpgen.Select(cfg.HelpRunner, exec.LookPath, cfg.HelpImage, nil)
	if err != nil {
		return nil, err
	}

	// Progress and prompts go to stderr when stdout carries the JSON report.
	out := cmd.OutOrStdout()
	if jsonOutput {
		out = cmd.ErrOrStderr()
	}

	git := vcs.NewManager()
	slog.Debug("configuration loaded",
		"repo", cfg.RepoURL(),
		"profile", prof.Name,
		"helpRunner", fmt.Sprintf("%T", help),
	)

	return initializer.New(initializer.Deps{
		Config:         cfg,
		Profile:        prof,
		Prompter:       selector.NewPrompter(out),
		Cloner:         template.NewGitCloner(git),
		Help:           help,
		Git:            git,
		Out:            out,
		RemoteBranches: opts.remoteBranches,
	}), nil
}

// unknownArgument prints the collected parameters and returns the usage
// error for token.
func unknownArgument(cmd *cobra.Command, opts *options, token string) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "branch=%q dest=%q lang=%q argument=%q\n",
		opts.branch, opts.dest, opts.lang, token)
	return model.NewCLIError(model.ExitGeneralError, "unknown argument: "+token)
}

// flagErrorToken extracts the offending token from pflag's unknown-flag
// errors. It returns "" for every other flag error.
//
//	unknown flag: --foo                 → "--foo"
//	unknown shorthand flag: 'x' in -xy  → "-xy"
func flagErrorToken(err error) string {
	msg := err.Error()
	if token, ok := strings.CutPrefix(msg, "unknown flag: "); ok {
		return token
	}
	if rest, ok := strings.CutPrefix(msg, "unknown shorthand flag: "); ok {
		if _, token, found := strings.Cut(rest, " in "); found {
			return token
		}
	}
	return ""
}

// initLogger installs the default slog logger on w: info level, debug with
// --verbose.
func initLogger(w io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// Execute runs the root command and exits the process with the resulting
// exit code. An interrupt cancels the command's context.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Run(ctx, rootCmd, os.Stderr)
	stop()
	os.Exit(int(code))
}

// Run executes rootCmd and translates its error into an exit code.
// CLIError values carry their own code; other errors map to
// ExitGeneralError.
func Run(ctx context.Context, rootCmd *cobra.Command, stderr io.Writer) model.ExitCode {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return model.ExitSuccess
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(stderr, cliErr.Message, cliErr.Err)
		return cliErr.Code
	}

	printError(stderr, err.Error(), nil)
	return model.ExitGeneralError
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}
