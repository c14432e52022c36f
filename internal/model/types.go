// Package model defines the domain types for the create-liveview CLI.
//
// All entities in this package are transient: they are built while a single
// scaffolding run collects its parameters, derives the project identity and
// rewrites the cloned template, and nothing here survives the process.
package model

import (
	"fmt"
	"strings"
)

// Selection is the single-token result of resolving a user's answer against
// a labeled option list. A valid Selection never contains a space.
type Selection string

// String returns the string representation of the Selection.
func (s Selection) String() string {
	return string(s)
}

// IsEmpty reports whether the Selection is empty, which tells the caller
// to prompt again.
func (s Selection) IsEmpty() bool {
	return s == ""
}

// FirstToken returns the part of label before its first space character.
//
// Option labels embed a short token followed by a description, e.g.
// "v5-demo (kitchen sink)" → "v5-demo". Only the space character splits;
// tabs and other whitespace are kept as part of the token.
func FirstToken(label string) string {
	token, _, _ := strings.Cut(label, " ")
	return token
}

// Language is a guide-message language code chosen by the user.
type Language string

const (
	// LangEnglish is the default language; no locale readme is kept.
	LangEnglish Language = "en"

	// LangSimplifiedChinese keeps README-zh-cn.md.
	LangSimplifiedChinese Language = "cn"

	// LangTraditionalChinese keeps README-zh-hk.md.
	LangTraditionalChinese Language = "hk"
)

// String returns the string representation of Language.
func (l Language) String() string {
	return string(l)
}

// IsKnown reports whether the language is one of the codes the default
// template ships guide messages for. Unknown codes are accepted by the CLI
// but keep no locale readme.
func (l Language) IsKnown() bool {
	switch l {
	case LangEnglish, LangSimplifiedChinese, LangTraditionalChinese:
		return true
	default:
		return false
	}
}

// ParseLanguage normalizes a language code (trimmed, lower-cased).
func ParseLanguage(s string) Language {
	return Language(strings.ToLower(strings.TrimSpace(s)))
}

// Identity holds the names derived from the destination directory.
//
// Example for "my-cool-app-server":
//
//	ProjectName:   "my-cool-app-server"
//	ShortName:     "my-cool-app"
//	ShortSiteName: "MCA"
//	SiteName:      "My Cool App"
type Identity struct {
	// ProjectName is the base name of the destination path.
	ProjectName string `json:"projectName"`

	// ShortName is ProjectName without a trailing "-server".
	ShortName string `json:"shortName"`

	// ShortSiteName is the upper-cased initials of ShortName's segments.
	ShortSiteName string `json:"shortSiteName"`

	// SiteName is ShortName in title case with segments joined by spaces.
	SiteName string `json:"siteName"`
}

// Rule is a single exact-match substitution. Find is replaced by Replace at
// its first occurrence only.
type Rule struct {
	Find    string `json:"find" yaml:"find"`
	Replace string `json:"replace" yaml:"replace"`
}

// String returns a human-readable form of the rule for logs.
func (r Rule) String() string {
	return fmt.Sprintf("%q → %q", r.Find, r.Replace)
}

// Params are the run parameters collected from flags, positional arguments,
// and interactive prompts.
type Params struct {
	// Branch is the template branch to clone (e.g., "v5-demo").
	Branch string `json:"branch"`

	// Dest is the destination directory, as given by the user.
	Dest string `json:"dest"`

	// Lang is the guide-message language code.
	Lang Language `json:"lang"`
}

// Result describes what a scaffolding run produced. It backs the final
// report in both text and JSON output.
type Result struct {
	Params Params `json:"params"`

	// Identity is the derived project identity.
	Identity Identity `json:"identity"`

	// RepoURL is the template repository the project was cloned from.
	RepoURL string `json:"repoUrl"`

	// ReadmeURL points at the template's README for the chosen branch.
	ReadmeURL string `json:"readmeUrl"`

	// Rewritten lists the files rewritten with project values.
	Rewritten []string `json:"rewritten"`

	// Removed lists the template-authoring files that were deleted.
	Removed []string `json:"removed,omitempty"`

	// GitInitialized is true when this run created the repository.
	GitInitialized bool `json:"gitInitialized"`

	// GitCommitted is true when the skeleton was committed.
	GitCommitted bool `json:"gitCommitted"`

	// NextSteps is the rendered "get started" text shown to the user.
	NextSteps string `json:"nextSteps"`
}

// ExitCode defines the CLI exit codes.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError covers usage errors and unspecified failures.
	ExitGeneralError ExitCode = 1

	// ExitTemplateFetch indicates cloning the template failed.
	ExitTemplateFetch ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible
	// while the help script had to run in a container.
	ExitDockerNotRunning ExitCode = 3

	// ExitHelpScript indicates the template's help script failed.
	ExitHelpScript ExitCode = 4

	// ExitGitError indicates a git command failed.
	ExitGitError ExitCode = 5

	// ExitUserCancelled indicates the user aborted an interactive prompt.
	ExitUserCancelled ExitCode = 7
)

// CLIError is an error that carries an exit code, so the CLI layer can
// translate failures into OS process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
