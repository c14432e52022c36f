// Package rewrite applies ordered placeholder substitutions to text and to
// files held in an afero file-store.
//
// Rules are applied in order and each replaces only the first occurrence of
// its literal, so later rules see the output of earlier ones. Rewriting is
// idempotent as long as no rule's literal reappears in the rewritten text;
// callers guarantee that by keeping literals distinct from replacements.
package rewrite

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/shinji-kodama/create-liveview/internal/model"
)

// Rewrite returns text with every rule applied once, in order.
//
// A rule whose literal is absent is a no-op. A rule with an empty literal is
// also a no-op: replacing "" would insert the replacement at offset 0 on
// every run.
func Rewrite(text string, rules []model.Rule) string {
	for _, r := range rules {
		if r.Find == "" {
			continue
		}
		text = strings.Replace(text, r.Find, r.Replace, 1)
	}
	return text
}

// File rewrites the file at path in place. The file must exist; a missing
// file is reported as an error. The original file mode is preserved.
//
// The returned bool reports whether the content changed.
func File(fs afero.Fs, path string, rules []model.Rule) (bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	original := string(data)
	rewritten := Rewrite(original, rules)
	if rewritten == original {
		return false, nil
	}

	if err := afero.WriteFile(fs, path, []byte(rewritten), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
