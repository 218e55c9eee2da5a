package radix

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/baditaflorin/go_asm_preprocess/internal/core/domain"
	"github.com/baditaflorin/go_asm_preprocess/internal/ports"
)

// digitValue returns the value of r as a digit (0-9, then A-Z or a-z for
// 10..35), or -1.
func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	default:
		return -1
	}
}

// Converter re-bases numeric literals and logs failures.
type Converter struct {
	logger ports.Logger
}

// NewConverter creates a new radix converter.
func NewConverter(logger ports.Logger) *Converter {
	return &Converter{logger: logger}
}

// Convert re-renders text, a literal in srcRadix, as a literal in destRadix.
func (c *Converter) Convert(text string, destRadix, srcRadix uint8) (string, error) {
	out, err := Convert(text, destRadix, srcRadix)
	if err != nil {
		c.logger.Debug("Radix conversion failed",
			"literal", text,
			"src_radix", srcRadix,
			"dest_radix", destRadix,
			"error", err,
		)
		return "", err
	}

	c.logger.Debug("Converted literal",
		"literal", text,
		"result", out,
		"src_radix", srcRadix,
		"dest_radix", destRadix,
	)
	return out, nil
}

// Convert parses text as an integer in srcRadix, with an optional leading
// '+' or '-', and renders the same value in destRadix using uppercase digits.
// Negative zero renders as "0".
func Convert(text string, destRadix, srcRadix uint8) (string, error) {
	if !domain.ValidRadix(srcRadix) {
		return "", &domain.RadixError{Radix: srcRadix, Err: domain.ErrRadixOutOfRange}
	}
	if !domain.ValidRadix(destRadix) {
		return "", &domain.RadixError{Radix: destRadix, Err: domain.ErrRadixOutOfRange}
	}

	body := text
	negative := false
	if len(body) > 0 && (body[0] == '-' || body[0] == '+') {
		negative = body[0] == '-'
		body = body[1:]
	}
	if body == "" {
		return "", fmt.Errorf("convert %q: %w", text, domain.ErrEmptyLiteral)
	}
	signLen := len(text) - len(body)

	// Accumulate in a uint64 until it would overflow, then continue in a big.Int.
	var small uint64
	var large *big.Int
	base := uint64(srcRadix)
	for i, r := range body {
		v := digitValue(r)
		if v < 0 || v >= int(srcRadix) {
			return "", &domain.ConversionError{
				Literal: text,
				Offset:  signLen + i,
				Char:    r,
				Radix:   srcRadix,
				Err:     domain.ErrInvalidDigit,
			}
		}

		if large == nil {
			if small <= (^uint64(0)-uint64(v))/base {
				small = small*base + uint64(v)
				continue
			}
			large = new(big.Int).SetUint64(small)
		}
		large.Mul(large, big.NewInt(int64(base)))
		large.Add(large, big.NewInt(int64(v)))
	}

	var out string
	zero := false
	if large == nil {
		out = strconv.FormatUint(small, int(destRadix))
		zero = small == 0
	} else {
		out = large.Text(int(destRadix))
	}
	out = strings.ToUpper(out)

	if negative && !zero {
		out = "-" + out
	}
	return out, nil
}
