package preprocess

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/baditaflorin/go_asm_preprocess/internal/warmup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuiet(t *testing.T, opts ...Option) *Preprocessor {
	t.Helper()
	p, err := New(append([]Option{WithQuietLogger()}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestOperations(t *testing.T) {
	p := newQuiet(t)

	assert.Equal(t, "MOV R1, R2", p.ToUpper("mov r1, r2"))
	assert.Equal(t, "jmp L1", p.FindAndReplace("jmp LOOP", "LOOP", "L1"))

	got, err := p.ConvertRadix("FF", 10, 16)
	require.NoError(t, err)
	assert.Equal(t, "255", got)

	_, err = p.ConvertRadix("G", 10, 16)
	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, 0, convErr.Offset)
	assert.ErrorIs(t, err, ErrInvalidDigit)

	residue, err := p.StripInfo(context.Background(), strings.NewReader("  nop ; x\n\nret\n"))
	require.NoError(t, err)
	assert.Equal(t, "nop\nret\n", residue)
}

func TestStripInfoTo(t *testing.T) {
	p := newQuiet(t, WithKeepBlankLines(true), WithCommentMarkers("#"))

	var out bytes.Buffer
	stats, err := p.StripInfoTo(context.Background(), strings.NewReader("nop # a\n\nret ; b\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "nop\n\nret ; b\n", out.String())
	assert.Equal(t, 3, stats.LinesRead)
	assert.Equal(t, 3, stats.LinesKept)
}

func TestNewValidation(t *testing.T) {
	_, err := New(WithQuietLogger(), WithLiteralRadix(37))
	var radixErr *RadixError
	require.True(t, errors.As(err, &radixErr))
	assert.Equal(t, uint8(37), radixErr.Radix)

	_, err = New(WithQuietLogger(), WithLiteralRadix(1))
	assert.ErrorIs(t, err, ErrRadixOutOfRange)

	_, err = New(WithQuietLogger(), WithCommentMarkers(""))
	assert.Error(t, err)
}

func TestProcessLine(t *testing.T) {
	subs := []Substitution{{Find: "$ADDR", Replace: "0x10"}}

	tests := []struct {
		name  string
		opts  []Option
		input string
		want  string
	}{
		{"uppercase only", nil, "ldi r0, $addr", "LDI R0, $ADDR"},
		{"substitution after case", []Option{WithSubstitutions(subs...)}, "ldi r0, $addr", "LDI R0, 0x10"},
		{"hex kept hex", []Option{WithSubstitutions(subs...), WithLiteralRadix(16)}, "ldi r0, $addr", "LDI R0, 0x10"},
		{"hex to decimal", []Option{WithSubstitutions(subs...), WithLiteralRadix(10)}, "ldi r0, $addr", "LDI R0, 16"},
		{"memory operand", []Option{WithLiteralRadix(10)}, "set [0x2000+i], 10", "SET [8192+I], 10"},
		{"dollar and binary", []Option{WithLiteralRadix(16)}, ".word $ff, %1010, 255", ".WORD 0xFF, 0xA, 0xFF"},
		{"negative", []Option{WithLiteralRadix(2)}, "add r1, -5", "ADD R1, -0b101"},
		{"string untouched", []Option{WithLiteralRadix(10)}, `.string "Hi 0x10", 0x10`, `.STRING "Hi 0x10", 16`},
		{"case disabled", []Option{WithUppercase(false), WithLiteralRadix(10)}, "ldi r0, 0x1f", "ldi r0, 31"},
		{"labels and registers", []Option{WithLiteralRadix(10)}, "loop: jnz loop", "LOOP: JNZ LOOP"},
		{"immediate hex", []Option{WithLiteralRadix(10)}, "lda #$ff", "LDA #255"},
		{"immediate binary", []Option{WithLiteralRadix(10)}, "ldx #%1010", "LDX #10"},
		{"immediate prefixed", []Option{WithLiteralRadix(10)}, "lda #0x10", "LDA #16"},
		{"low byte", []Option{WithLiteralRadix(10)}, "lda #<$1234", "LDA #<4660"},
		{"high byte", []Option{WithLiteralRadix(10)}, "lda #>$1234", "LDA #>4660"},
		{"char literal case kept", []Option{WithLiteralRadix(10)}, "lda #'a'", "LDA #'a'"},
		{"char literal semicolon", nil, "cmp #';'", "CMP #';'"},
		{"prime register", nil, "ex af,af'", "EX AF,AF'"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newQuiet(t, tc.opts...)
			got, err := p.ProcessLine(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProcessLineMalformedLiteral(t *testing.T) {
	p := newQuiet(t, WithLiteralRadix(10))

	got, err := p.ProcessLine("ldi r0, 0x1g")
	assert.ErrorIs(t, err, ErrInvalidDigit)
	assert.Equal(t, "LDI R0, 0X1G", got)
}

func TestProcess(t *testing.T) {
	p := newQuiet(t,
		WithSubstitutions(Substitution{Find: "$BASE", Replace: "0x2000"}),
		WithLiteralRadix(10),
	)

	input := "; demo\nstart: ldi r0, $base ; load\n  ldi r1, 0x1G\n\n  .word $ff\n"
	var out bytes.Buffer
	stats, err := p.Process(context.Background(), strings.NewReader(input), &out)

	assert.Equal(t, "START: LDI R0, 8192\nldi r1, 0x1G\n.WORD 255\n", out.String())
	assert.Equal(t, 3, stats.LinesKept)

	require.Error(t, err)
	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 2, lineErr.Line)
	assert.Equal(t, "ldi r1, 0x1G", lineErr.Text)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, 'G', convErr.Char)
}

func TestProcessCancelled(t *testing.T) {
	p := newQuiet(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, strings.NewReader("nop\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWarmUp(t *testing.T) {
	p := newQuiet(t)
	assert.False(t, p.Warmed())

	wc := warmup.WarmupConfig{Concurrency: 2, Iterations: 50, SampleLines: 20}
	warmed := newQuiet(t, WithWarmUp(true), WithWarmUpConfig(wc), WithFastNormalizer())
	assert.True(t, warmed.Warmed())
	assert.Equal(t, "NOP", warmed.ToUpper("nop"))
}

func TestParseSubstitutions(t *testing.T) {
	subs, err := ParseSubstitutions(strings.NewReader("; aliases\n$BASE = 0x2000\nSP=R7\n"))
	require.NoError(t, err)

	p := newQuiet(t, WithSubstitutions(subs...), WithLiteralRadix(10))
	got, err := p.ProcessLine("mov sp, $base")
	require.NoError(t, err)
	assert.Equal(t, "MOV R7, 8192", got)
	assert.Equal(t, "MOV R7, 0x2000", p.ApplySubstitutions("MOV SP, $BASE"))
}
