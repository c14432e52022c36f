// Package docker provides Docker Engine API wrappers used to run a
// template's help script inside a throwaway Node.js container when no
// local node binary is available.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Container labels that mark one-shot containers as owned by
//     create-liveview, so leftovers from interrupted runs can be swept
//   - The run-once lifecycle: pull, create, start, wait, collect logs,
//     remove
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
