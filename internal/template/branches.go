package template

import (
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// majorPrefix matches the "v<major>-" prefix of versioned template branches
// such as "v5-demo" or "v4-web-template".
var majorPrefix = regexp.MustCompile(`^(v\d+)-`)

// LatestBranches returns the branches carrying the highest "v<major>-"
// prefix among names, sorted. Branches without such a prefix (master,
// feature branches) are never returned.
func LatestBranches(names []string) []string {
	var latest *semver.Version
	byMajor := map[uint64][]string{}

	for _, name := range names {
		m := majorPrefix.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		v, err := semver.NewVersion(m[1])
		if err != nil {
			continue
		}
		byMajor[v.Major()] = append(byMajor[v.Major()], name)
		if latest == nil || v.GreaterThan(latest) {
			latest = v
		}
	}

	if latest == nil {
		return nil
	}
	out := byMajor[latest.Major()]
	sort.Strings(out)
	return out
}
