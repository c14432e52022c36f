// Package helpgen runs a template's help script and captures its standard
// output, which becomes the project's help.txt.
//
// The script runs with a local node binary when one is installed, and
// otherwise inside a throwaway Node.js container.
package helpgen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/shinji-kodama/create-liveview/internal/docker"
	"github.com/shinji-kodama/create-liveview/internal/model"
)

// Runner modes accepted by Select.
const (
	ModeAuto   = "auto"
	ModeNode   = "node"
	ModeDocker = "docker"
)

// staleAfter is the age after which a leftover help container is swept.
const staleAfter = 30 * time.Minute

// Runner runs script (relative to dir) with dir as working directory and
// returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, script string) (string, error)
}

// LookPathFunc matches exec.LookPath.
type LookPathFunc func(file string) (string, error)

// ConnectFunc opens a Docker engine connection.
type ConnectFunc func(ctx context.Context) (docker.Engine, error)

// HasExec reports whether name resolves to an executable on PATH.
func HasExec(lookPath LookPathFunc, name string) bool {
	_, err := lookPath(name)
	return err == nil
}

// Select returns the Runner for mode.
//
// ModeAuto picks NodeRunner when node is on PATH and DockerRunner otherwise.
// An unknown mode is a usage error.
func Select(mode string, lookPath LookPathFunc, image string, connect ConnectFunc) (Runner, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeNode:
		return &NodeRunner{}, nil
	case ModeDocker:
		return &DockerRunner{Image: image, Connect: connect}, nil
	case ModeAuto, "":
		if HasExec(lookPath, "node") {
			return &NodeRunner{}, nil
		}
		return &DockerRunner{Image: image, Connect: connect}, nil
	default:
		return nil, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("unknown help runner %q (expected %s, %s or %s)", mode, ModeAuto, ModeNode, ModeDocker))
	}
}

// NodeRunner runs scripts with a local node binary.
type NodeRunner struct {
	// Binary overrides the executable. Empty means "node".
	Binary string
}

// Run executes `node <script>` in dir.
func (r *NodeRunner) Run(ctx context.Context, dir, script string) (string, error) {
	bin := r.Binary
	if bin == "" {
		bin = "node"
	}

	// #nosec G204 -- script comes from the template profile
	cmd := exec.CommandContext(ctx, bin, script)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", scriptError(script, stderr.String(), err)
	}
	return stdout.String(), nil
}

// DockerRunner runs scripts in a one-shot container of Image with dir
// mounted as the working directory.
type DockerRunner struct {
	Image   string
	Connect ConnectFunc

	// Now is the clock used for container labels. Nil means time.Now.
	Now func() time.Time
}

// Run executes `node <script>` in a container and returns its stdout.
func (r *DockerRunner) Run(ctx context.Context, dir, script string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", model.WrapCLIError(model.ExitHelpScript, fmt.Sprintf("failed to resolve %s", dir), err)
	}

	connect := r.Connect
	if connect == nil {
		connect = func(ctx context.Context) (docker.Engine, error) { return docker.Connect(ctx) }
	}
	engine, err := connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = engine.Close() }()

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	if _, err := docker.SweepStale(ctx, engine, now(), staleAfter); err != nil {
		return "", err
	}

	// Container paths are always slash-separated.
	containerScript := filepath.ToSlash(script)

	var stdout, stderr bytes.Buffer
	res, err := docker.RunOnce(ctx, engine, docker.RunSpec{
		Image:   r.Image,
		Cmd:     []string{"node", containerScript},
		HostDir: abs,
		Labels:  docker.BuildLabels(abs, containerScript, now()),
	}, &stdout, &stderr)
	if err != nil {
		return "", err
	}
	if res.StatusCode != 0 {
		return "", scriptError(script, stderr.String(), fmt.Errorf("container %s", res))
	}
	return stdout.String(), nil
}

// scriptError wraps a failed help script run with its stderr.
func scriptError(script, stderr string, err error) error {
	message := fmt.Sprintf("help script %s failed", script)
	if s := strings.TrimSpace(stderr); s != "" {
		message = fmt.Sprintf("%s: %s", message, s)
	}
	return model.WrapCLIError(model.ExitHelpScript, message, err)
}
