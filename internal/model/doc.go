// Package model defines the domain types and value objects for the
// create-liveview CLI.
//
// This package contains pure data structures with no external dependencies:
// the selection token, the derived project identity, substitution rules,
// collected run parameters, and the run result.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
