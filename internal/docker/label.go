package docker

import (
	"fmt"
	"strings"
	"time"
)

// Label keys mark the one-shot containers started by create-liveview.
// All keys share the "create-liveview." prefix to avoid collisions with
// labels set by other tools.
const (
	// LabelPrefix is the common prefix for all create-liveview labels.
	LabelPrefix = "create-liveview."

	// LabelManagedBy identifies containers created by this CLI.
	// Key: "create-liveview.managed-by", Value: always ManagedByValue.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelProject stores the project directory the container mounts.
	LabelProject = LabelPrefix + "project"

	// LabelScript stores the script the container runs, relative to the
	// project directory.
	LabelScript = LabelPrefix + "script"

	// LabelCreatedAt stores the RFC3339 creation time.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "create-liveview"

// ContainerNamePrefix starts the name of every one-shot container.
const ContainerNamePrefix = "create-liveview-help-"

// BuildLabels returns the labels for a container running script against
// the project at projectDir.
func BuildLabels(projectDir, script string, createdAt time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelProject:   projectDir,
		LabelScript:    script,
		LabelCreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
}

// ParseCreatedAt reads the creation time from container labels.
func ParseCreatedAt(labels map[string]string) (time.Time, error) {
	if labels[LabelManagedBy] != ManagedByValue {
		return time.Time{}, fmt.Errorf(
			"label %s has unexpected value %q (expected %q)",
			LabelManagedBy, labels[LabelManagedBy], ManagedByValue,
		)
	}
	raw, ok := labels[LabelCreatedAt]
	if !ok {
		return time.Time{}, fmt.Errorf("missing required Docker label: %s", LabelCreatedAt)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid label %s: %w", LabelCreatedAt, err)
	}
	return t, nil
}

// FilterLabels returns the label filter that selects containers created
// by this CLI.
func FilterLabels() map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
	}
}

// containerName strips the leading "/" the Docker API puts on names.
func containerName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}
