// Package naming derives the secondary project identifiers from the
// destination directory name.
//
// Segments are separated by hyphens. Empty segments (from consecutive,
// leading or trailing hyphens) are dropped before deriving initials and the
// title-case name, so "my--app" yields "MA" and "My App".
package naming

import (
	"strings"
	"unicode/utf8"

	"github.com/shinji-kodama/create-liveview/internal/model"
)

// serverSuffix is stripped from the project name to get the short name.
// No other suffix is special-cased.
const serverSuffix = "-server"

// Derive returns the identity for projectName.
//
//	Derive("my-app-server").ShortName     == "my-app"
//	Derive("my-cool-app").ShortSiteName   == "MCA"
//	Derive("my-cool-app").SiteName        == "My Cool App"
func Derive(projectName string) model.Identity {
	shortName := ShortName(projectName)
	segments := Segments(shortName)

	return model.Identity{
		ProjectName:   projectName,
		ShortName:     shortName,
		ShortSiteName: initials(segments),
		SiteName:      titleCase(segments),
	}
}

// ShortName removes one exact trailing "-server" from name.
func ShortName(name string) string {
	return strings.TrimSuffix(name, serverSuffix)
}

// Segments splits name on hyphens and drops empty segments.
func Segments(name string) []string {
	parts := strings.Split(name, "-")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func initials(segments []string) string {
	var b strings.Builder
	for _, s := range segments {
		head, _ := splitFirstRune(s)
		b.WriteString(strings.ToUpper(head))
	}
	return b.String()
}

func titleCase(segments []string) string {
	words := make([]string, 0, len(segments))
	for _, s := range segments {
		head, rest := splitFirstRune(s)
		words = append(words, strings.ToUpper(head)+rest)
	}
	return strings.Join(words, " ")
}

// splitFirstRune returns the first rune of s as a string and the remainder.
func splitFirstRune(s string) (string, string) {
	if s == "" {
		return "", ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size], s[size:]
}
