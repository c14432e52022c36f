// Package selector resolves free-form user answers against labeled option
// lists and runs the interactive re-prompt loops.
//
// An answer is either a 1-based option number or a literal token:
//
//	options: ["v5-demo (kitchen sink)", "v5-web-template (mobile responsive)"]
//	"2"              → "v5-web-template"
//	"v4-demo"        → "v4-demo"
//	"my-branch foo"  → "my-branch"
//	"3"              → "" (out of range, ask again)
//	"0"              → "0" (zero is never an index)
package selector

import (
	"context"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shinji-kodama/create-liveview/internal/model"
)

// numericPattern matches plain decimal literals such as "2", "02", "+1",
// "-3", "1.0" and ".5". Hex, exponents, "Inf" and "NaN" are not numeric and
// resolve as literal tokens.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// Resolve maps raw against options.
//
// The trimmed input is numeric when it is a plain decimal literal. A numeric
// zero falls through to the literal branch. A nonzero integer n with
// 1 <= n <= len(options) selects the first token of options[n-1]; any other
// nonzero number resolves to an empty Selection, telling the caller to ask
// again. Non-numeric input is used verbatim, truncated at its first space.
func Resolve(raw string, options []string) model.Selection {
	input := strings.TrimSpace(raw)

	if numericPattern.MatchString(input) {
		n, err := strconv.ParseFloat(input, 64)
		if err == nil && n != 0 {
			return byIndex(n, options)
		}
	}

	return model.Selection(model.FirstToken(input))
}

// byIndex returns the first token of the option at 1-based index n, or an
// empty Selection when n is fractional or out of range.
func byIndex(n float64, options []string) model.Selection {
	if n != math.Trunc(n) || n < 1 || n > float64(len(options)) {
		return ""
	}
	return model.Selection(model.FirstToken(options[int(n)-1]))
}

// Menu describes one interactive choice: the prompt name, the numbered
// options, and text printed before and after them.
type Menu struct {
	// Name labels the prompt, e.g. "template branch".
	Name string `yaml:"name"`

	// PreLines are printed before the options.
	PreLines []string `yaml:"pre_lines"`

	// Options are the labels; each starts with its selectable token.
	Options []string `yaml:"options"`

	// PostLines are printed after the options.
	PostLines []string `yaml:"post_lines"`
}

// Render returns the menu text shown before each prompt.
func (m Menu) Render() string {
	lines := make([]string, 0, len(m.PreLines)+len(m.Options)+len(m.PostLines))
	lines = append(lines, m.PreLines...)
	for i, option := range m.Options {
		lines = append(lines, fmt.Sprintf("   %d. %s", i+1, option))
	}
	lines = append(lines, m.PostLines...)
	return strings.Join(lines, "\n")
}

// Question returns the prompt text, e.g. "language (num/name): ".
func (m Menu) Question() string {
	return m.Name + " (num/name): "
}

// Ask prints the menu to out and asks until the answer resolves to a
// non-empty Selection. There is no retry limit and no timeout; only a
// prompter error (closed input, interrupt) ends the loop early.
func Ask(ctx context.Context, p Prompter, out io.Writer, m Menu) (model.Selection, error) {
	for {
		fmt.Fprintln(out, m.Render())

		answer, err := p.Ask(ctx, m.Question())
		if err != nil {
			return "", err
		}

		if sel := Resolve(answer, m.Options); !sel.IsEmpty() {
			return sel, nil
		}
	}
}

// AskNonEmpty repeats question until the trimmed answer is non-empty.
func AskNonEmpty(ctx context.Context, p Prompter, question string) (string, error) {
	for {
		answer, err := p.Ask(ctx, question)
		if err != nil {
			return "", err
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			return answer, nil
		}
	}
}
