package normalizer

import (
	"strings"
	"unicode"

	"github.com/baditaflorin/go_asm_preprocess/internal/ports"
)

// DefaultUpperNormalizer implements the default case normalization strategy.
type DefaultUpperNormalizer struct{}

// NewDefaultUpperNormalizer creates a new default normalizer.
func NewDefaultUpperNormalizer() ports.Normalizer {
	return &DefaultUpperNormalizer{}
}

// Normalize converts every letter of text to its upper case form, one rune
// at a time, leaving everything else unchanged.
func (n *DefaultUpperNormalizer) Normalize(text string) string {
	return strings.Map(unicode.ToUpper, text)
}
