package lineprocessor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/baditaflorin/go_asm_preprocess/internal/adapters/logger"
	"github.com/baditaflorin/go_asm_preprocess/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, config ProcessingConfig) *Processor {
	t.Helper()
	p, err := NewProcessor(logger.NewNopLogger(), config)
	require.NoError(t, err)
	return p
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"comment and padding", "  mov r1, r2   ; copy\n", "mov r1, r2\n"},
		{"slash comment", "add r1, r2 // sum\n", "add r1, r2\n"},
		{"whole line comment", "; header\nnop\n", "nop\n"},
		{"blank lines dropped", "nop\n\n   \n\t\nret\n", "nop\nret\n"},
		{"no trailing newline", "nop\nret", "nop\nret\n"},
		{"crlf", "nop ; a\r\nret\r\n", "nop\nret\n"},
		{"lone cr", "nop\rret\r", "nop\nret\n"},
		{"empty stream", "", ""},
		{"only comments", "; a\n// b\n", ""},
		{"marker in string", ".string \"a;b\" ; c\n", ".string \"a;b\"\n"},
		{"escaped quote", ".string \"x\\\";y\" ; z\n", ".string \"x\\\";y\"\n"},
		{"unterminated string", ".string \"a;b\n", ".string \"a;b\n"},
		{"inner spacing kept", "mov   r1,\tr2\n", "mov   r1,\tr2\n"},
		{"marker in char literal", "lda #';' ; load semicolon\n", "lda #';'\n"},
		{"escaped char literal", "lda #'\\'' ; quote\n", "lda #'\\''\n"},
		{"slash in char literal", "cmp #'/' // slash\n", "cmp #'/'\n"},
		{"prime register", "ex af,af' ; swap\n", "ex af,af'\n"},
	}

	p := newTestProcessor(t, ProcessingConfig{})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Strip(context.Background(), strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStripKeepBlankLines(t *testing.T) {
	p := newTestProcessor(t, ProcessingConfig{KeepBlankLines: true})
	got, err := p.Strip(context.Background(), strings.NewReader("; a\nnop\n\nret"))
	require.NoError(t, err)
	assert.Equal(t, "\nnop\n\nret\n", got)
}

func TestStripCustomMarkers(t *testing.T) {
	p := newTestProcessor(t, ProcessingConfig{CommentMarkers: []string{"#"}})
	got, err := p.Strip(context.Background(), strings.NewReader("nop # x\nret ; y\n"))
	require.NoError(t, err)
	assert.Equal(t, "nop\nret ; y\n", got)

	_, err = NewProcessor(logger.NewNopLogger(), ProcessingConfig{CommentMarkers: []string{";", ""}})
	assert.ErrorIs(t, err, ErrEmptyCommentMarker)
}

func TestStripChunkBoundaries(t *testing.T) {
	input := "start: ldi r0, 0x30 ; load\r\n  mov r1, r0\r\n\r\n.string \"a;b\" // c\rjnz start"
	want := "start: ldi r0, 0x30\nmov r1, r0\n.string \"a;b\"\njnz start\n"

	for _, size := range []int{1, 2, 3, 5, 7, 64} {
		p := newTestProcessor(t, ProcessingConfig{ChunkSize: size})
		got, err := p.Strip(context.Background(), strings.NewReader(input))
		require.NoError(t, err, "chunk size %d", size)
		assert.Equal(t, want, got, "chunk size %d", size)

		// A reader returning one byte per call exercises the same path.
		got, err = p.Strip(context.Background(), iotest.OneByteReader(strings.NewReader(input)))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStripTo(t *testing.T) {
	p := newTestProcessor(t, ProcessingConfig{})
	input := "; header\nnop\n\nret ; done\n"

	var out bytes.Buffer
	stats, err := p.StripTo(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)
	assert.Equal(t, "nop\nret\n", out.String())
	assert.Equal(t, ports.StripStats{LinesRead: 4, LinesKept: 2, BytesRead: int64(len(input))}, stats)
}

func TestStripCancelled(t *testing.T) {
	p := newTestProcessor(t, ProcessingConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := p.Strip(ctx, strings.NewReader("nop\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
}

func TestStripReadError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("nop\nret"), iotest.ErrReader(boom))

	p := newTestProcessor(t, ProcessingConfig{})
	got, err := p.Strip(context.Background(), r)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "nop\n", got)
}

func TestStripCallbackError(t *testing.T) {
	stop := errors.New("stop")
	p := newTestProcessor(t, ProcessingConfig{})

	var seen []string
	_, err := p.StripFunc(context.Background(), strings.NewReader("a\nb\nc\n"), func(line string) error {
		seen = append(seen, line)
		if line == "b" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"a", "b"}, seen)
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestStripDoesNotCloseReader(t *testing.T) {
	r := &closeTracker{Reader: strings.NewReader("nop\n")}
	p := newTestProcessor(t, ProcessingConfig{})

	_, err := p.Strip(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, r.closed)
}
