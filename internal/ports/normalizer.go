package ports

// Normalizer defines the interface for case normalization of source text.
type Normalizer interface {
	Normalize(text string) string
}
