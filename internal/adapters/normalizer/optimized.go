package normalizer

import (
	"unicode"
	"unicode/utf8"

	"github.com/baditaflorin/go_asm_preprocess/internal/pool"
	"github.com/baditaflorin/go_asm_preprocess/internal/ports"
)

// FastUpperNormalizer uppercases with a precomputed ASCII table and pooled
// buffers, falling back to unicode.ToUpper for everything above 0x7F.
type FastUpperNormalizer struct {
	// Pre-computed upper case byte for every ASCII character (0-127)
	asciiTable [128]byte

	bytePool *pool.BufferPool
}

// NewFastUpperNormalizer creates a new fast normalizer.
func NewFastUpperNormalizer() ports.Normalizer {
	n := &FastUpperNormalizer{
		bytePool: pool.NewBufferPool(256), // most source lines are short
	}

	for i := 0; i < 128; i++ {
		n.asciiTable[i] = byte(unicode.ToUpper(rune(i)))
	}

	return n
}

// Normalize converts every letter of text to upper case.
func (n *FastUpperNormalizer) Normalize(text string) string {
	if len(text) == 0 {
		return ""
	}

	// Nothing to do for ASCII text without lower case letters.
	clean := true
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b >= utf8.RuneSelf || (b >= 'a' && b <= 'z') {
			clean = false
			break
		}
	}
	if clean {
		return text
	}

	buffer := n.bytePool.Get()
	defer n.bytePool.Put(buffer)

	if cap(*buffer) < len(text) {
		*buffer = make([]byte, 0, len(text))
	}

	for i := 0; i < len(text); {
		b := text[i]
		if b < utf8.RuneSelf {
			*buffer = append(*buffer, n.asciiTable[b])
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		*buffer = utf8.AppendRune(*buffer, unicode.ToUpper(r))
		i += size
	}

	return string(*buffer)
}

// NormalizerFactory creates the appropriate normalizer based on performance requirements
type NormalizerFactory struct{}

// NewNormalizerFactory creates a new normalizer factory
func NewNormalizerFactory() *NormalizerFactory {
	return &NormalizerFactory{}
}

// NormalizerType selects a normalization strategy.
type NormalizerType int

const (
	// DefaultNormalizerType maps runes through unicode.ToUpper
	DefaultNormalizerType NormalizerType = iota
	// FastNormalizerType uses a lookup table and buffer pooling, optimized for ASCII
	FastNormalizerType
)

// CreateNormalizer creates a normalizer of the specified type
func (f *NormalizerFactory) CreateNormalizer(normalizerType NormalizerType) ports.Normalizer {
	switch normalizerType {
	case FastNormalizerType:
		return NewFastUpperNormalizer()
	default:
		return NewDefaultUpperNormalizer()
	}
}
