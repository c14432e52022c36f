package docker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildLabels verifies that every label key is set and the timestamp
// is stored in UTC.
func TestBuildLabels(t *testing.T) {
	created := time.Date(2026, 10, 17, 9, 30, 0, 0, time.FixedZone("HKT", 8*60*60))
	labels := BuildLabels("/work/liveview-hn", "scripts/help.js", created)

	assert.Equal(t, map[string]string{
		LabelManagedBy: "create-liveview",
		LabelProject:   "/work/liveview-hn",
		LabelScript:    "scripts/help.js",
		LabelCreatedAt: "2026-10-17T01:30:00Z",
	}, labels)
}

// TestParseCreatedAt covers the round trip and the failure cases.
func TestParseCreatedAt(t *testing.T) {
	created := time.Date(2026, 10, 17, 1, 30, 0, 0, time.UTC)

	got, err := ParseCreatedAt(BuildLabels("/p", "s.js", created))
	require.NoError(t, err)
	assert.True(t, created.Equal(got))

	_, err = ParseCreatedAt(map[string]string{LabelManagedBy: "someone-else", LabelCreatedAt: "2026-10-17T01:30:00Z"})
	assert.ErrorContains(t, err, "unexpected value")

	_, err = ParseCreatedAt(map[string]string{LabelManagedBy: ManagedByValue})
	assert.ErrorContains(t, err, LabelCreatedAt)

	_, err = ParseCreatedAt(map[string]string{LabelManagedBy: ManagedByValue, LabelCreatedAt: "yesterday"})
	assert.ErrorContains(t, err, "invalid label")
}

// TestFilterLabels verifies the listing filter.
func TestFilterLabels(t *testing.T) {
	assert.Equal(t, map[string]string{"create-liveview.managed-by": "create-liveview"}, FilterLabels())
}

// TestDetectUnixSocket verifies socket probing order.
func TestDetectUnixSocket(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "docker.sock")
	require.NoError(t, writeEmpty(present))

	host, err := detectUnixSocket([]string{filepath.Join(dir, "missing.sock"), present})
	require.NoError(t, err)
	assert.Equal(t, "unix://"+present, host)

	_, err = detectUnixSocket([]string{filepath.Join(dir, "missing.sock")})
	assert.ErrorContains(t, err, "Docker socket not found")
}
