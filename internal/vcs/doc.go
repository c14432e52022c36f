// Package vcs provides the git operations the scaffolder needs: shallow
// clones of template branches, remote branch listing, and the init and
// commit steps run in a freshly generated project.
//
// All Git operations are performed via os/exec calls to the git binary,
// rather than using a Git library like go-git. This approach:
//   - Avoids CGO dependencies (libgit2)
//   - Uses the exact same Git behavior, credentials and proxies the user
//     sees in their terminal
//
// The Manager struct provides one method per git subcommand it wraps.
package vcs
