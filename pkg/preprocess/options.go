package preprocess

import (
	"github.com/baditaflorin/go_asm_preprocess/internal/adapters/logger"
	"github.com/baditaflorin/go_asm_preprocess/internal/adapters/normalizer"
	"github.com/baditaflorin/go_asm_preprocess/internal/core/domain"
	"github.com/baditaflorin/go_asm_preprocess/internal/ports"
	"github.com/baditaflorin/go_asm_preprocess/internal/warmup"
	"github.com/baditaflorin/l"
)

// Substitution is a single literal find/replace pair.
type Substitution = domain.Substitution

// Option defines a functional option for configuring a Preprocessor.
type Option func(*config)

type config struct {
	Logger         ports.Logger
	Normalizer     ports.Normalizer
	CommentMarkers []string
	KeepBlankLines bool
	ChunkSize      int
	Uppercase      bool
	Substitutions  []Substitution
	LiteralRadix   uint8
	WarmUp         bool
	WarmUpConfig   warmup.WarmupConfig
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *config) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithQuietLogger discards all log output.
func WithQuietLogger() Option {
	return func(cfg *config) {
		cfg.Logger = logger.NewNopLogger()
	}
}

// WithNormalizer sets a custom case normalizer.
func WithNormalizer(n ports.Normalizer) Option {
	return func(cfg *config) {
		cfg.Normalizer = n
	}
}

// WithFastNormalizer selects the table-driven, pooled normalizer.
func WithFastNormalizer() Option {
	return func(cfg *config) {
		cfg.Normalizer = normalizer.NewNormalizerFactory().CreateNormalizer(normalizer.FastNormalizerType)
	}
}

// WithCommentMarkers replaces the default comment markers (";" and "//").
func WithCommentMarkers(markers ...string) Option {
	return func(cfg *config) {
		cfg.CommentMarkers = append([]string{}, markers...)
	}
}

// WithKeepBlankLines keeps an empty line for each blank residue line so that
// output line numbers match the source.
func WithKeepBlankLines(keep bool) Option {
	return func(cfg *config) {
		cfg.KeepBlankLines = keep
	}
}

// WithChunkSize sets the read size used when stripping streams.
func WithChunkSize(size int) Option {
	return func(cfg *config) {
		cfg.ChunkSize = size
	}
}

// WithUppercase enables or disables case normalization in ProcessLine.
func WithUppercase(enabled bool) Option {
	return func(cfg *config) {
		cfg.Uppercase = enabled
	}
}

// WithSubstitutions sets the ordered substitution table used by ProcessLine.
func WithSubstitutions(subs ...Substitution) Option {
	return func(cfg *config) {
		cfg.Substitutions = append([]Substitution{}, subs...)
	}
}

// WithLiteralRadix makes ProcessLine rewrite every recognized numeric
// literal in the given radix. Zero disables rewriting.
func WithLiteralRadix(radix uint8) Option {
	return func(cfg *config) {
		cfg.LiteralRadix = radix
	}
}

// WithWarmUp primes pooled buffers before New returns.
func WithWarmUp(enabled bool) Option {
	return func(cfg *config) {
		cfg.WarmUp = enabled
	}
}

// WithWarmUpConfig sets a custom warmup configuration.
func WithWarmUpConfig(wc warmup.WarmupConfig) Option {
	return func(cfg *config) {
		cfg.WarmUpConfig = wc
	}
}
