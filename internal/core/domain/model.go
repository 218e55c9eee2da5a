package domain

import "strconv"

// MinRadix and MaxRadix bound the supported numeral bases.
const (
	MinRadix = 2
	MaxRadix = 36
)

// Substitution is a single literal find/replace pair.
type Substitution struct {
	Find    string
	Replace string
}

// Literal is a numeric token split into its sign, digits and radix.
type Literal struct {
	Digits   string
	Radix    uint8
	Negative bool
}

// String renders the literal as a signed digit string without prefix.
func (l Literal) String() string {
	if l.Negative {
		return "-" + l.Digits
	}
	return l.Digits
}

// ValidRadix reports whether r is within MinRadix..MaxRadix.
func ValidRadix(r uint8) bool {
	return r >= MinRadix && r <= MaxRadix
}

// radixName is used by error messages.
func radixName(r uint8) string {
	return "base " + strconv.Itoa(int(r))
}
