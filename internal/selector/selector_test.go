package selector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/create-liveview/internal/model"
)

var branchOptions = []string{
	"v5-demo (kitchen sink)",
	"v5-minimal-template (single page starter)",
	"v5-minimal-without-db-template",
	"v5-web-template (mobile responsive)",
}

// TestResolve_Index verifies that every in-range index selects the first
// token of the matching label.
func TestResolve_Index(t *testing.T) {
	for i, label := range branchOptions {
		got := Resolve(fmt.Sprint(i+1), branchOptions)
		assert.Equal(t, model.Selection(model.FirstToken(label)), got, "index %d", i+1)
	}
}

// TestResolve covers literal tokens, zero, and out-of-range numbers.
func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.Selection
	}{
		{"zero is a literal", "0", "0"},
		{"zero with padding is a literal", "00", "00"},
		{"decimal zero is a literal", "0.0", "0.0"},
		{"literal token", "v4-demo", "v4-demo"},
		{"literal truncated at first space", "my-branch with notes", "my-branch"},
		{"input is trimmed", "  2  ", "v5-minimal-template"},
		{"leading zero is coerced", "02", "v5-minimal-template"},
		{"integral decimal is coerced", "3.0", "v5-minimal-without-db-template"},
		{"explicit plus sign", "+1", "v5-demo"},
		{"out of range", "5", ""},
		{"negative", "-1", ""},
		{"fractional", "1.5", ""},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"hex is a literal", "0x2", "0x2"},
		{"NaN is a literal", "NaN", "NaN"},
		{"Infinity is a literal", "Infinity", "Infinity"},
		{"mixed case literal kept", "HK", "HK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.raw, branchOptions))
		})
	}
}

// TestResolve_LiteralWithoutSpace verifies that non-numeric strings without
// spaces come back unchanged, whatever the option list.
func TestResolve_LiteralWithoutSpace(t *testing.T) {
	for _, s := range []string{"abc", "v5-auth-template", "-", "x1", "1x"} {
		assert.Equal(t, model.Selection(s), Resolve(s, nil))
		assert.Equal(t, model.Selection(s), Resolve(s, branchOptions))
	}
}

// TestMenu_Render verifies the numbered menu layout.
func TestMenu_Render(t *testing.T) {
	m := Menu{
		Name:      "language",
		PreLines:  []string{"Choose a language for guide messages:"},
		Options:   []string{"en (English)", "cn (简体中文)"},
		PostLines: []string{"  See all versions on: https://example.com"},
	}

	want := strings.Join([]string{
		"Choose a language for guide messages:",
		"   1. en (English)",
		"   2. cn (简体中文)",
		"  See all versions on: https://example.com",
	}, "\n")
	assert.Equal(t, want, m.Render())
	assert.Equal(t, "language (num/name): ", m.Question())
}

// scriptedPrompter answers questions from a fixed list and records them.
type scriptedPrompter struct {
	answers   []string
	questions []string
}

func (p *scriptedPrompter) Ask(_ context.Context, question string) (string, error) {
	p.questions = append(p.questions, question)
	if len(p.answers) == 0 {
		return "", io.ErrUnexpectedEOF
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

// TestAsk_RepromptsUntilNonEmpty verifies the liveness loop: empty and
// out-of-range answers lead to another prompt.
func TestAsk_RepromptsUntilNonEmpty(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"", "9", "  ", "4"}}
	var out bytes.Buffer

	sel, err := Ask(context.Background(), p, &out, Menu{Name: "template branch", Options: branchOptions})
	require.NoError(t, err)
	assert.Equal(t, model.Selection("v5-web-template"), sel)
	assert.Len(t, p.questions, 4)
	assert.Equal(t, 4, strings.Count(out.String(), "   1. v5-demo (kitchen sink)"), "menu is printed before every prompt")
}

// TestAsk_PropagatesPrompterError verifies that input errors end the loop.
func TestAsk_PropagatesPrompterError(t *testing.T) {
	p := &scriptedPrompter{}
	_, err := Ask(context.Background(), p, io.Discard, Menu{Name: "language", Options: []string{"en"}})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

// TestAskNonEmpty verifies the bare destination prompt loop.
func TestAskNonEmpty(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"", "   ", " liveview-hn "}}
	got, err := AskNonEmpty(context.Background(), p, "project directory: ")
	require.NoError(t, err)
	assert.Equal(t, "liveview-hn", got)
	assert.Equal(t, []string{"project directory: ", "project directory: ", "project directory: "}, p.questions)
}
