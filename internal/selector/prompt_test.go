package selector

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

// TestLinePrompter reads consecutive answers from one buffered reader.
func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("2\r\nliveview-hn\nlast"), &out)
	ctx := context.Background()

	a, err := p.Ask(ctx, "language (num/name): ")
	require.NoError(t, err)
	assert.Equal(t, "2", a)

	a, err = p.Ask(ctx, "project directory: ")
	require.NoError(t, err)
	assert.Equal(t, "liveview-hn", a)

	// A final line without newline is still an answer.
	a, err = p.Ask(ctx, "again: ")
	require.NoError(t, err)
	assert.Equal(t, "last", a)

	_, err = p.Ask(ctx, "closed: ")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	assert.Equal(t, "language (num/name): project directory: again: closed: ", out.String())
}

// TestLinePrompter_CancelledContext verifies that a done context stops
// before any input is read.
func TestLinePrompter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewLinePrompter(strings.NewReader("y\n"), io.Discard)
	_, err := p.Ask(ctx, "Do you want to init a git repo? (Y/n): ")
	assert.ErrorIs(t, err, context.Canceled)
}

// TestNewPrompter_Writer verifies that piped input prompts on the given
// writer rather than stdout.
func TestNewPrompter_Writer(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("stdin is a terminal")
	}

	var out bytes.Buffer
	p, ok := NewPrompter(&out).(*LinePrompter)
	require.True(t, ok)
	assert.Same(t, &out, p.out)
}
