package ports

// RadixConverter defines the interface for re-basing numeric literals.
type RadixConverter interface {
	Convert(text string, destRadix, srcRadix uint8) (string, error)
}

// Replacer defines the interface for literal substring substitution.
type Replacer interface {
	Replace(text string) string
}
