package preprocess

import (
	"errors"
	"strings"

	"github.com/baditaflorin/go_asm_preprocess/internal/core/radix"
)

// mapUnquoted applies fn to every part of line outside double-quoted string
// literals and single-quoted character literals. Quoted parts, quotes
// included, are copied unchanged.
func mapUnquoted(line string, fn func(string) string) string {
	if !strings.ContainsAny(line, `"'`) {
		return fn(line)
	}

	var sb strings.Builder
	sb.Grow(len(line))
	start := 0
	for start < len(line) {
		open := nextQuote(line, start)
		if open < 0 {
			sb.WriteString(fn(line[start:]))
			break
		}
		sb.WriteString(fn(line[start:open]))

		end := closingQuote(line, open)
		sb.WriteString(line[open:end])
		start = end
	}
	return sb.String()
}

// nextQuote returns the index of the first quote at or after start that
// opens a literal, or -1. A single quote right after an identifier
// character (the Z80 register af') is not an opening quote.
func nextQuote(line string, start int) int {
	for i := start; i < len(line); i++ {
		switch line[i] {
		case '"':
			return i
		case '\'':
			if i == 0 || !isIdentByte(line[i-1]) {
				return i
			}
		}
	}
	return -1
}

// closingQuote returns the index just past the literal opened at line[open],
// or len(line) when it is unterminated.
func closingQuote(line string, open int) int {
	quote := line[open]
	for i := open + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(line)
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// isDelimiter reports whether b separates operand tokens.
func isDelimiter(b byte) bool {
	switch b {
	case ' ', '\t', ',', '[', ']', '(', ')', '+', '*', '#', '<', '>':
		return true
	}
	return false
}

// rewriteLiterals rewrites every numeric token outside string literals in
// destRadix. Malformed numbers are left in place and the first one is
// returned as the error, together with the original line.
func rewriteLiterals(line string, destRadix uint8) (string, error) {
	var firstErr error
	out := mapUnquoted(line, func(seg string) string {
		var sb strings.Builder
		sb.Grow(len(seg))
		i := 0
		for i < len(seg) {
			if isDelimiter(seg[i]) {
				sb.WriteByte(seg[i])
				i++
				continue
			}
			j := i
			for j < len(seg) && !isDelimiter(seg[j]) {
				j++
			}
			token := seg[i:j]
			i = j

			lit, err := radix.ParseLiteral(token)
			if err == nil {
				lit, err = radix.Rebase(lit, destRadix)
			}
			if err != nil {
				if firstErr == nil && !errors.Is(err, radix.ErrNotLiteral) {
					firstErr = err
				}
				sb.WriteString(token)
				continue
			}
			sb.WriteString(radix.FormatLiteral(lit))
		}
		return sb.String()
	})
	if firstErr != nil {
		return line, firstErr
	}
	return out, nil
}
