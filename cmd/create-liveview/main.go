// Package main is the entry point for the create-liveview CLI.
//
// The binary scaffolds a new ts-liveview project from a template branch.
// All functionality lives in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release process. During development they default to "dev",
// "none", and "unknown".
package main

import (
	"github.com/shinji-kodama/create-liveview/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
