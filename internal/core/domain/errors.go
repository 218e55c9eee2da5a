package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDigit is returned when a literal holds a character that is not
	// a digit of its source radix.
	ErrInvalidDigit = errors.New("invalid digit for radix")
	// ErrRadixOutOfRange is returned for a radix outside MinRadix..MaxRadix.
	ErrRadixOutOfRange = errors.New("radix out of range")
	// ErrEmptyLiteral is returned when there are no digits to convert.
	ErrEmptyLiteral = errors.New("empty numeric literal")
)

// ConversionError reports the offending character of a literal.
type ConversionError struct {
	Literal string
	Offset  int
	Char    rune
	Radix   uint8
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %q: %q at offset %d is not a %s digit: %v",
		e.Literal, e.Char, e.Offset, radixName(e.Radix), e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// RadixError reports an unsupported radix argument.
type RadixError struct {
	Radix uint8
	Err   error
}

func (e *RadixError) Error() string {
	return fmt.Sprintf("radix %d: %v (supported %d..%d)", e.Radix, e.Err, MinRadix, MaxRadix)
}

func (e *RadixError) Unwrap() error { return e.Err }

// LineError ties a failure to a 1-based line of the stripped residue.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
