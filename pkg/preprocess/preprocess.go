// Package preprocess provides the text preprocessing stage of an assembler:
// case normalization, comment stripping, literal substitution and numeric
// radix conversion, plus a line pipeline that combines them.
package preprocess

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/baditaflorin/go_asm_preprocess/internal/adapters/logger"
	"github.com/baditaflorin/go_asm_preprocess/internal/adapters/normalizer"
	"github.com/baditaflorin/go_asm_preprocess/internal/adapters/stream/lineprocessor"
	"github.com/baditaflorin/go_asm_preprocess/internal/core/domain"
	"github.com/baditaflorin/go_asm_preprocess/internal/core/radix"
	"github.com/baditaflorin/go_asm_preprocess/internal/core/replace"
	"github.com/baditaflorin/go_asm_preprocess/internal/ports"
	"github.com/baditaflorin/go_asm_preprocess/internal/warmup"
)

// Re-exported errors so callers can match with errors.Is / errors.As.
var (
	ErrInvalidDigit    = domain.ErrInvalidDigit
	ErrRadixOutOfRange = domain.ErrRadixOutOfRange
	ErrEmptyLiteral    = domain.ErrEmptyLiteral
)

type (
	// ConversionError reports the offending character of a literal.
	ConversionError = domain.ConversionError
	// RadixError reports an unsupported radix.
	RadixError = domain.RadixError
	// LineError ties a failure to a line of the stripped residue.
	LineError = domain.LineError
	// Stats describes one pass over a source stream.
	Stats = ports.StripStats
)

// Preprocessor bundles the preprocessing operations. It is immutable after
// New and safe for concurrent use.
type Preprocessor struct {
	logger     ports.Logger
	normalizer ports.Normalizer
	stripper   *lineprocessor.Processor
	replacer   ports.Replacer
	converter  ports.RadixConverter

	uppercase    bool
	literalRadix uint8
	warmed       bool
}

// New creates a Preprocessor with the provided functional options.
// If no logger is provided, a default l logger writing to stdout is created.
func New(opts ...Option) (*Preprocessor, error) {
	cfg := &config{
		Uppercase:    true,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.LiteralRadix != 0 && !domain.ValidRadix(cfg.LiteralRadix) {
		return nil, &domain.RadixError{Radix: cfg.LiteralRadix, Err: domain.ErrRadixOutOfRange}
	}

	if cfg.Logger == nil {
		var err error
		cfg.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}

	if cfg.Normalizer == nil {
		cfg.Normalizer = normalizer.NewDefaultUpperNormalizer()
	}

	stripper, err := lineprocessor.NewProcessor(cfg.Logger, lineprocessor.ProcessingConfig{
		ChunkSize:      cfg.ChunkSize,
		CommentMarkers: cfg.CommentMarkers,
		KeepBlankLines: cfg.KeepBlankLines,
	})
	if err != nil {
		return nil, err
	}

	p := &Preprocessor{
		logger:       cfg.Logger,
		normalizer:   cfg.Normalizer,
		stripper:     stripper,
		replacer:     replace.NewReplacer(cfg.Substitutions, cfg.Logger),
		converter:    radix.NewConverter(cfg.Logger),
		uppercase:    cfg.Uppercase,
		literalRadix: cfg.LiteralRadix,
	}

	if cfg.WarmUp {
		wm := warmup.NewManager(cfg.Logger, cfg.WarmUpConfig)
		wm.RegisterNormalizer(p.normalizer)
		wm.RegisterStripper(p.stripper)
		wm.RegisterConverter(p.converter)
		wm.WarmUp(context.Background())
		p.warmed = true
	}

	return p, nil
}

// Warmed reports whether the preprocessor ran a warmup pass.
func (p *Preprocessor) Warmed() bool {
	return p.warmed
}

// Close releases the logger.
func (p *Preprocessor) Close() error {
	return p.logger.Close()
}

// ToUpper converts every letter of text to upper case. It is idempotent.
func (p *Preprocessor) ToUpper(text string) string {
	return p.normalizer.Normalize(text)
}

// StripInfo reads r to EOF and returns it without comments, padding and
// blank lines. The caller keeps ownership of r; it is not closed.
func (p *Preprocessor) StripInfo(ctx context.Context, r io.Reader) (string, error) {
	return p.stripper.Strip(ctx, r)
}

// StripInfoTo is StripInfo writing the residue to w.
func (p *Preprocessor) StripInfoTo(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	return p.stripper.StripTo(ctx, r, w)
}

// FindAndReplace substitutes every non-overlapping occurrence of find, left
// to right. An empty find leaves text unchanged.
func (p *Preprocessor) FindAndReplace(text, find, replacement string) string {
	return replace.FindAndReplace(text, find, replacement)
}

// ApplySubstitutions runs the configured substitution table over text.
func (p *Preprocessor) ApplySubstitutions(text string) string {
	return p.replacer.Replace(text)
}

// ParseSubstitutions reads a substitution table of FIND=REPLACE lines, for
// use with WithSubstitutions. Blank lines and lines starting with ';' are
// skipped.
func ParseSubstitutions(r io.Reader) ([]Substitution, error) {
	return replace.ParseTable(r)
}

// ConvertRadix re-renders text, an integer literal in srcRadix with an
// optional sign, in destRadix. Both radixes must be within 2..36.
func (p *Preprocessor) ConvertRadix(text string, destRadix, srcRadix uint8) (string, error) {
	return p.converter.Convert(text, destRadix, srcRadix)
}

// ProcessLine runs one residue line through the pipeline: case
// normalization outside string literals, the substitution table, then
// rewriting of numeric literals when a literal radix is configured.
func (p *Preprocessor) ProcessLine(line string) (string, error) {
	if p.uppercase {
		line = mapUnquoted(line, p.normalizer.Normalize)
	}
	line = p.replacer.Replace(line)
	if p.literalRadix == 0 {
		return line, nil
	}
	return rewriteLiterals(line, p.literalRadix)
}

// Process strips r and runs every residue line through ProcessLine, writing
// the result to w. A line that fails is written unchanged and processing
// continues; the failures are returned joined, each as a *LineError.
func (p *Preprocessor) Process(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	bw := bufio.NewWriter(w)
	var lineErrs []error
	lineNo := 0

	stats, err := p.stripper.StripFunc(ctx, r, func(line string) error {
		lineNo++
		out, lineErr := p.ProcessLine(line)
		if lineErr != nil {
			p.logger.Warn("Line preprocessing failed", "line", lineNo, "text", line, "error", lineErr)
			lineErrs = append(lineErrs, &domain.LineError{Line: lineNo, Text: line, Err: lineErr})
			out = line
		}
		if _, werr := bw.WriteString(out); werr != nil {
			return werr
		}
		return bw.WriteByte('\n')
	})
	if err != nil {
		return stats, err
	}
	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("write output: %w", err)
	}

	return stats, errors.Join(lineErrs...)
}
