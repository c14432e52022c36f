package rewrite

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/create-liveview/internal/model"
)

// TestRewrite covers first-occurrence replacement, ordering and no-op rules.
func TestRewrite(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		rules []model.Rule
		want  string
	}{
		{
			name: "empty rule set returns text unchanged",
			text: "ab ab",
			want: "ab ab",
		},
		{
			name:  "only the first occurrence is replaced",
			text:  "ab ab",
			rules: []model.Rule{{Find: "ab", Replace: "X"}},
			want:  "X ab",
		},
		{
			name:  "absent literal is a no-op",
			text:  "hello",
			rules: []model.Rule{{Find: "missing", Replace: "X"}},
			want:  "hello",
		},
		{
			name:  "empty literal is a no-op",
			text:  "hello",
			rules: []model.Rule{{Find: "", Replace: "X"}},
			want:  "hello",
		},
		{
			name: "later rules see earlier results",
			text: "a",
			rules: []model.Rule{
				{Find: "a", Replace: "b"},
				{Find: "b", Replace: "c"},
			},
			want: "c",
		},
		{
			name: "repeated literal consumed one rule at a time",
			text: "ts-liveview ts-liveview",
			rules: []model.Rule{
				{Find: "ts-liveview", Replace: "one"},
				{Find: "ts-liveview", Replace: "two"},
			},
			want: "one two",
		},
		{
			name: "scripts/config style rules",
			text: "user=beenotung/ts-liveview\nroot=liveviews\nname=ts-liveview\n",
			rules: []model.Rule{
				{Find: "beenotung/ts-liveview", Replace: "alice/liveview-hn"},
				{Find: "liveviews", Replace: "liveview-hn"},
				{Find: "ts-liveview", Replace: "liveview-hn"},
			},
			want: "user=alice/liveview-hn\nroot=liveview-hn\nname=liveview-hn\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rewrite(tt.text, tt.rules))
		})
	}
}

// TestRewrite_Deterministic verifies the same input always yields the same
// output, and that a second pass is a no-op when literals do not reappear.
func TestRewrite_Deterministic(t *testing.T) {
	text := "short_site_name: 'demo-site'\nsite_name: 'ts-liveview'\n"
	rules := []model.Rule{
		{Find: "short_site_name: 'demo-site'", Replace: "short_site_name: 'LH'"},
		{Find: "site_name: 'ts-liveview'", Replace: "site_name: 'Liveview Hn'"},
	}

	first := Rewrite(text, rules)
	assert.Equal(t, first, Rewrite(text, rules))
	assert.Equal(t, first, Rewrite(first, rules), "second pass should not change the text")
	assert.Equal(t, "short_site_name: 'LH'\nsite_name: 'Liveview Hn'\n", first)
}

// TestFile verifies in-place rewriting through the file-store.
func TestFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "scripts/config", []byte("name=ts-liveview\n"), 0o755))

	changed, err := File(fs, "scripts/config", []model.Rule{{Find: "ts-liveview", Replace: "my-app"}})
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := afero.ReadFile(fs, "scripts/config")
	require.NoError(t, err)
	assert.Equal(t, "name=my-app\n", string(data))

	info, err := fs.Stat("scripts/config")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "mode should be preserved")

	// Second run finds nothing to do.
	changed, err = File(fs, "scripts/config", []model.Rule{{Find: "ts-liveview", Replace: "my-app"}})
	require.NoError(t, err)
	assert.False(t, changed)
}

// TestFile_Missing verifies that a missing file is an error.
func TestFile_Missing(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := File(fs, "server/config.ts", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server/config.ts")
}
