// container.go implements the run-once container lifecycle: a container is
// created from an image with a host directory bind-mounted, run to
// completion, its output collected, and removed.
//
// Every container carries the create-liveview labels, so containers left
// behind by an interrupted run can be found and removed by SweepStale.
package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/google/uuid"
)

// ProjectMount is the container path the host directory is mounted at.
const ProjectMount = "/project"

// RunSpec describes a one-shot container.
type RunSpec struct {
	// Image is the image reference, e.g. "node:lts-alpine".
	Image string

	// Cmd is the command run inside the container.
	Cmd []string

	// HostDir is the absolute host directory mounted at ProjectMount and
	// used as the working directory.
	HostDir string

	// Name is the container name. Empty generates one with NewContainerName.
	Name string

	// Labels are applied to the container.
	Labels map[string]string
}

// RunResult is the outcome of a finished container.
type RunResult struct {
	Name       string
	StatusCode int64
}

// NewContainerName returns a unique name for a one-shot container.
func NewContainerName() string {
	return ContainerNamePrefix + uuid.NewString()
}

// BuildConfig returns the container and host configuration for spec.
func BuildConfig(spec RunSpec) (*container.Config, *container.HostConfig) {
	cfg := &container.Config{
		Image:      spec.Image,
		Cmd:        spec.Cmd,
		WorkingDir: ProjectMount,
		Labels:     spec.Labels,
		Tty:        false,
	}
	host := &container.HostConfig{
		Binds: []string{spec.HostDir + ":" + ProjectMount},
	}
	return cfg, host
}

// RunOnce runs spec to completion and copies the container's output into
// stdout and stderr.
//
// The container is removed whatever the outcome. A non-zero exit status is
// not an error here: callers decide from RunResult.StatusCode.
func RunOnce(ctx context.Context, e Engine, spec RunSpec, stdout, stderr io.Writer) (*RunResult, error) {
	if spec.Name == "" {
		spec.Name = NewContainerName()
	}

	slog.Debug("pulling image", "image", spec.Image)
	if err := e.PullImage(ctx, spec.Image); err != nil {
		return nil, err
	}

	cfg, host := BuildConfig(spec)
	id, err := e.CreateContainer(ctx, cfg, host, spec.Name)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Use a fresh context so cleanup still runs after cancellation.
		if err := e.RemoveContainer(context.WithoutCancel(ctx), id); err != nil {
			slog.Warn("failed to remove container", "name", spec.Name, "error", err)
		}
	}()

	slog.Debug("starting container", "name", spec.Name, "cmd", spec.Cmd)
	if err := e.StartContainer(ctx, id); err != nil {
		return nil, err
	}

	status, err := e.WaitContainer(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := e.ContainerLogs(ctx, id, stdout, stderr); err != nil {
		return nil, err
	}

	return &RunResult{Name: spec.Name, StatusCode: status}, nil
}

// SweepStale removes create-liveview containers created more than maxAge
// ago. It returns the removed names.
//
// Removal failures are logged and skipped; only a failed listing is an
// error.
func SweepStale(ctx context.Context, e Engine, now time.Time, maxAge time.Duration) ([]string, error) {
	list, err := e.ListContainers(ctx, FilterLabels())
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, c := range list {
		if !isStale(c, now, maxAge) {
			continue
		}
		name := containerName(c.Names)
		if err := e.RemoveContainer(ctx, c.ID); err != nil {
			slog.Warn("failed to remove stale container", "name", name, "error", err)
			continue
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// isStale reports whether a listed container should be swept. Containers
// with an unreadable creation label are swept unless they are running.
func isStale(c container.Summary, now time.Time, maxAge time.Duration) bool {
	createdAt, err := ParseCreatedAt(c.Labels)
	if err != nil {
		return c.State != "running"
	}
	return now.Sub(createdAt) > maxAge
}

// String implements fmt.Stringer for log output.
func (r RunResult) String() string {
	return fmt.Sprintf("%s exited with status %d", r.Name, r.StatusCode)
}
