package radix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/baditaflorin/go_asm_preprocess/internal/core/domain"
)

// ErrNotLiteral is returned by ParseLiteral for tokens that are not numbers.
var ErrNotLiteral = errors.New("not a numeric literal")

// literalPrefixes lists the recognized radix prefixes, checked in order.
var literalPrefixes = []struct {
	prefix string
	radix  uint8
}{
	{"0x", 16},
	{"0X", 16},
	{"0b", 2},
	{"0B", 2},
	{"0o", 8},
	{"0O", 8},
	{"$", 16},
	{"%", 2},
}

// ParseLiteral recognizes a numeric token written in one of the usual
// assembler notations: 0x/$ hex, 0b/% binary, 0o octal, a trailing h for hex
// (first character must be a decimal digit) and plain decimal. An optional
// sign may precede any of them.
//
// Tokens that are not numbers yield ErrNotLiteral. A token whose first
// character after the sign is a decimal digit is always taken as a number,
// so a malformed one such as "0x1G" or "12Q" yields a *domain.ConversionError
// or domain.ErrEmptyLiteral instead.
func ParseLiteral(token string) (domain.Literal, error) {
	var lit domain.Literal
	body := token
	if len(body) > 0 && (body[0] == '-' || body[0] == '+') {
		lit.Negative = body[0] == '-'
		body = body[1:]
	}
	if body == "" {
		return domain.Literal{}, ErrNotLiteral
	}
	signLen := len(token) - len(body)

	for _, p := range literalPrefixes {
		if strings.HasPrefix(body, p.prefix) {
			digits := body[len(p.prefix):]
			if validDigits(digits, p.radix) {
				lit.Digits, lit.Radix = digits, p.radix
				return lit, nil
			}
		}
	}

	if n := len(body); n > 1 && (body[n-1] == 'h' || body[n-1] == 'H') && isDecimalDigit(body[0]) {
		digits := body[:n-1]
		if validDigits(digits, 16) {
			lit.Digits, lit.Radix = digits, 16
			return lit, nil
		}
	}

	if validDigits(body, 10) {
		lit.Digits, lit.Radix = body, 10
		return lit, nil
	}

	if !isDecimalDigit(body[0]) {
		return domain.Literal{}, ErrNotLiteral
	}
	return domain.Literal{}, malformed(token, body, signLen)
}

// malformed builds the error for a digit-led token that is not a literal,
// guessing the intended radix from its prefix or suffix.
func malformed(token, body string, offset int) error {
	digits, radix := body, uint8(10)
	switch {
	case len(body) >= 2 && (body[:2] == "0x" || body[:2] == "0X"):
		digits, radix, offset = body[2:], 16, offset+2
	case len(body) >= 2 && (body[:2] == "0b" || body[:2] == "0B"):
		digits, radix, offset = body[2:], 2, offset+2
	case len(body) >= 2 && (body[:2] == "0o" || body[:2] == "0O"):
		digits, radix, offset = body[2:], 8, offset+2
	case body[len(body)-1] == 'h' || body[len(body)-1] == 'H':
		digits, radix = body[:len(body)-1], 16
	}

	if digits == "" {
		return fmt.Errorf("literal %q: %w", token, domain.ErrEmptyLiteral)
	}
	for i, r := range digits {
		if v := digitValue(r); v < 0 || v >= int(radix) {
			return &domain.ConversionError{
				Literal: token,
				Offset:  offset + i,
				Char:    r,
				Radix:   radix,
				Err:     domain.ErrInvalidDigit,
			}
		}
	}
	return fmt.Errorf("literal %q: %w", token, domain.ErrInvalidDigit)
}

// FormatLiteral renders a literal with the canonical prefix of its radix:
// 0x, 0b, 0o, nothing for decimal and "<radix>#" for any other base.
func FormatLiteral(lit domain.Literal) string {
	var prefix string
	switch lit.Radix {
	case 16:
		prefix = "0x"
	case 2:
		prefix = "0b"
	case 8:
		prefix = "0o"
	case 10:
	default:
		prefix = strconv.Itoa(int(lit.Radix)) + "#"
	}

	if lit.Negative {
		return "-" + prefix + lit.Digits
	}
	return prefix + lit.Digits
}

// Rebase converts lit into destRadix.
func Rebase(lit domain.Literal, destRadix uint8) (domain.Literal, error) {
	out, err := Convert(lit.String(), destRadix, lit.Radix)
	if err != nil {
		return domain.Literal{}, err
	}

	res := domain.Literal{Radix: destRadix, Digits: out}
	if strings.HasPrefix(out, "-") {
		res.Negative = true
		res.Digits = out[1:]
	}
	return res, nil
}

func validDigits(s string, radix uint8) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		v := digitValue(r)
		if v < 0 || v >= int(radix) {
			return false
		}
	}
	return true
}

func isDecimalDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
