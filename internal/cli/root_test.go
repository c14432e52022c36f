package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/create-liveview/internal/initializer"
	"github.com/shinji-kodama/create-liveview/internal/model"
)

// fakeRunner records the parameters it was run with.
type fakeRunner struct {
	got    *model.Params
	result *model.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, params model.Params) (*model.Result, error) {
	f.got = &params
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Params = params
	return &res, nil
}

func builderFor(r runner) builder {
	return func(*cobra.Command, *options) (runner, error) { return r, nil }
}

// failBuilder fails the test if the command gets as far as building.
func failBuilder(t *testing.T) builder {
	t.Helper()
	return func(*cobra.Command, *options) (runner, error) {
		t.Fatal("initializer must not be built")
		return nil, nil
	}
}

// execute runs a fresh root command with args and returns the exit code
// and the captured output streams.
func execute(t *testing.T, build builder, args ...string) (model.ExitCode, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	cmd := newRootCommand(build)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	code := Run(context.Background(), cmd, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_UnknownFlag(t *testing.T) {
	code, _, stderr := execute(t, failBuilder(t), "liveview-hn", "--foo")

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Contains(t, stderr, "unknown argument: --foo")
	assert.Contains(t, stderr, `argument="--foo"`)
}

func TestRun_UnknownShorthand(t *testing.T) {
	code, _, stderr := execute(t, failBuilder(t), "-z")

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Contains(t, stderr, "unknown argument: -z")
}

func TestRun_ExtraPositional(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		token string
	}{
		{
			name:  "second positional",
			args:  []string{"liveview-hn", "extra"},
			token: "extra",
		},
		{
			name:  "positional after --dest",
			args:  []string{"--dest", "liveview-hn", "other"},
			token: "other",
		},
		{
			name:  "second positional after overriding --dest",
			args:  []string{"liveview-hn", "--dest", "other", "extra"},
			token: "extra",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, failBuilder(t), tt.args...)

			assert.Equal(t, model.ExitGeneralError, code)
			assert.Contains(t, stderr, "unknown argument: "+tt.token)
			assert.Contains(t, stderr, `dest=`)
		})
	}
}

func TestRun_MissingFlagValue(t *testing.T) {
	code, _, stderr := execute(t, failBuilder(t), "--branch")

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Contains(t, stderr, "flag needs an argument")
	assert.NotContains(t, stderr, "unknown argument")
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := execute(t, failBuilder(t), "--help")

	assert.Equal(t, model.ExitSuccess, code)
	assert.Contains(t, stdout, "create-liveview --branch v5-demo --dest liveview-hn --lang hk")
	assert.Contains(t, stdout, "--branch")
	assert.Contains(t, stdout, "--lang")
}

func TestRun_Params(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want model.Params
	}{
		{
			name: "all flags",
			args: []string{"--branch", "v5-demo", "--dest", "liveview-hn", "--lang", "hk"},
			want: model.Params{Branch: "v5-demo", Dest: "liveview-hn", Lang: "hk"},
		},
		{
			name: "positional destination",
			args: []string{"--branch", "v5-demo", "liveview-hn"},
			want: model.Params{Branch: "v5-demo", Dest: "liveview-hn"},
		},
		{
			name: "positional before flags",
			args: []string{"liveview-hn", "--lang", "cn"},
			want: model.Params{Dest: "liveview-hn", Lang: "cn"},
		},
		{
			name: "--dest after positional overrides it",
			args: []string{"liveview-hn", "--dest", "other", "--branch", "v5-demo", "--lang", "en"},
			want: model.Params{Branch: "v5-demo", Dest: "other", Lang: "en"},
		},
		{
			name: "empty --dest leaves room for a positional",
			args: []string{"--dest", "", "liveview-hn"},
			want: model.Params{Dest: "liveview-hn"},
		},
		{
			name: "nothing given",
			args: nil,
			want: model.Params{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{result: &model.Result{NextSteps: "cd liveview-hn"}}
			code, stdout, _ := execute(t, builderFor(r), tt.args...)

			require.Equal(t, model.ExitSuccess, code)
			require.NotNil(t, r.got)
			assert.Equal(t, tt.want, *r.got)
			assert.Contains(t, stdout, "cd liveview-hn")
		})
	}
}

func TestRun_JSONReport(t *testing.T) {
	r := &fakeRunner{result: &model.Result{
		Identity:  model.Identity{ProjectName: "liveview-hn", ShortSiteName: "LH"},
		NextSteps: "cd liveview-hn",
	}}

	code, stdout, _ := execute(t, builderFor(r), "--json", "--branch", "v5-demo", "liveview-hn")
	require.Equal(t, model.ExitSuccess, code)

	var got model.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "LH", got.Identity.ShortSiteName)
	assert.Equal(t, "v5-demo", got.Params.Branch)
	assert.Equal(t, "liveview-hn", got.Params.Dest)
}

func TestRun_RunnerError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.ExitCode
		msg  string
	}{
		{
			name: "cli error keeps its code",
			err:  model.WrapCLIError(model.ExitTemplateFetch, "failed to clone template", errors.New("not found")),
			want: model.ExitTemplateFetch,
			msg:  "Error: failed to clone template: not found",
		},
		{
			name: "plain error is general",
			err:  errors.New("boom"),
			want: model.ExitGeneralError,
			msg:  "Error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, builderFor(&fakeRunner{err: tt.err}), "liveview-hn")

			assert.Equal(t, tt.want, code)
			assert.Contains(t, stderr, tt.msg)
		})
	}
}

func TestRun_JSONError(t *testing.T) {
	r := &fakeRunner{err: model.WrapCLIError(model.ExitGitError, "git commit failed", errors.New("exit status 128"))}
	code, _, stderr := execute(t, builderFor(r), "--json", "liveview-hn")

	assert.Equal(t, model.ExitGitError, code)
	assert.Contains(t, stderr, `"message": "git commit failed"`)
	assert.Contains(t, stderr, `"detail": "exit status 128"`)
}

func TestFlagErrorToken(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"unknown flag: --foo", "--foo"},
		{"unknown shorthand flag: 'x' in -x", "-x"},
		{"unknown shorthand flag: 'z' in -az", "-az"},
		{"flag needs an argument: --branch", ""},
		{"invalid argument \"x\" for \"--remote-branches\" flag", ""},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, flagErrorToken(errors.New(tt.msg)))
		})
	}
}

func TestRootCommand_UnknownArgumentError(t *testing.T) {
	cmd := newRootCommand(failBuilder(t))
	cmd.SetArgs([]string{"liveview-hn", "--foo"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Equal(t, "unknown argument: --foo", cliErr.Message)
}

func TestBuildInitializer_JSONOutputUsesStderr(t *testing.T) {
	t.Setenv("CREATE_LIVEVIEW_HELP_RUNNER", "node")

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(buildInitializer)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	// Binding the flags resets the global, so set it afterwards.
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	r, err := buildInitializer(cmd, &options{destAt: -1})
	require.NoError(t, err)

	in, ok := r.(*initializer.Initializer)
	require.True(t, ok)
	assert.Same(t, &stderr, in.Out)
	assert.NotNil(t, in.Prompter)
}
