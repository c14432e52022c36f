package selector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"
)

// ErrAborted is returned when the user interrupts a prompt (Ctrl-C).
var ErrAborted = errors.New("prompt aborted")

// Prompter reads a single line of input in answer to a question.
// Implementations block until a line is available.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// NewPrompter returns a survey-backed prompter when stdin is a terminal and
// a line-reading prompter otherwise, so piped answers keep working.
// Questions are written to out.
func NewPrompter(out io.Writer) Prompter {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		p := &SurveyPrompter{}
		if f, ok := out.(terminal.FileWriter); ok {
			p.Opts = append(p.Opts, survey.WithStdio(os.Stdin, f, os.Stderr))
		}
		return p
	}
	return NewLinePrompter(os.Stdin, out)
}

// SurveyPrompter asks questions with an interactive survey input.
type SurveyPrompter struct {
	// Opts are passed through to survey.AskOne (e.g. survey.WithStdio).
	Opts []survey.AskOpt
}

// Ask implements Prompter.
func (p *SurveyPrompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var answer string
	prompt := &survey.Input{
		// survey renders its own "? ... " decoration, so the trailing
		// colon of the plain-text question is dropped.
		Message: strings.TrimRight(question, ": "),
	}
	if err := survey.AskOne(prompt, &answer, p.Opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return answer, nil
}

// LinePrompter writes the question to out and reads one line from in.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter. The reader is buffered once so
// consecutive questions do not lose input.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Ask implements Prompter. A final line without a newline is returned as
// is; end of input with nothing read is io.ErrUnexpectedEOF, so a closed
// stdin cannot spin a re-prompt loop forever.
func (p *LinePrompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", io.ErrUnexpectedEOF
			}
		} else {
			return "", err
		}
	}

	return strings.TrimRight(line, "\r\n"), nil
}
