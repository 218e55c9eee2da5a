package lineprocessor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/baditaflorin/go_asm_preprocess/internal/ports"
)

const (
	// DefaultChunkSize defines the default size of each read from the source
	DefaultChunkSize = 64 * 1024 // 64KB

	// ContextCheckFrequency defines how often (in reads) to check for cancellation
	ContextCheckFrequency = 16

	CR = '\r'
	LF = '\n'
)

// DefaultCommentMarkers are the comment introducers removed by default.
var DefaultCommentMarkers = []string{";", "//"}

// ErrEmptyCommentMarker is returned by NewProcessor for an empty marker.
var ErrEmptyCommentMarker = errors.New("comment marker must not be empty")

// ProcessingConfig defines configuration for stripping
type ProcessingConfig struct {
	ChunkSize      int
	CommentMarkers []string
	// KeepBlankLines emits an empty line for every blank residue so that
	// output line numbers match the source.
	KeepBlankLines bool
}

// Processor strips comments and padding from assembler source, line by line.
type Processor struct {
	logger ports.Logger

	lineBufferPool  *LineBufferPool
	chunkBufferPool *ChunkBufferPool

	chunkSize      int
	markers        [][]byte
	keepBlankLines bool
}

// NewProcessor creates a new stripping line processor
func NewProcessor(logger ports.Logger, config ProcessingConfig) (*Processor, error) {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.CommentMarkers == nil {
		config.CommentMarkers = DefaultCommentMarkers
	}

	markers := make([][]byte, 0, len(config.CommentMarkers))
	for _, m := range config.CommentMarkers {
		if m == "" {
			return nil, ErrEmptyCommentMarker
		}
		markers = append(markers, []byte(m))
	}

	return &Processor{
		logger:          logger,
		lineBufferPool:  NewLineBufferPool(),
		chunkBufferPool: NewChunkBufferPool(config.ChunkSize),
		chunkSize:       config.ChunkSize,
		markers:         markers,
		keepBlankLines:  config.KeepBlankLines,
	}, nil
}

// Strip reads r to EOF and returns the residue, one line per kept source line,
// each terminated by '\n'. An empty stream yields "". On a read error the
// residue gathered so far is returned with the error. r is never closed.
func (p *Processor) Strip(ctx context.Context, r io.Reader) (string, error) {
	var sb strings.Builder
	_, err := p.StripFunc(ctx, r, func(line string) error {
		sb.WriteString(line)
		sb.WriteByte(LF)
		return nil
	})
	return sb.String(), err
}

// StripTo reads r to EOF and writes the residue to w.
func (p *Processor) StripTo(ctx context.Context, r io.Reader, w io.Writer) (ports.StripStats, error) {
	bw := bufio.NewWriter(w)
	stats, err := p.StripFunc(ctx, r, func(line string) error {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		return bw.WriteByte(LF)
	})
	if flushErr := bw.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("write residue: %w", flushErr)
	}
	return stats, err
}

// StripFunc reads r to EOF and calls fn with every kept residue line, without
// its terminator. LF, CRLF and a lone CR all end a line. An error from fn
// stops processing and is returned.
func (p *Processor) StripFunc(ctx context.Context, r io.Reader, fn func(line string) error) (ports.StripStats, error) {
	startTime := time.Now()
	var stats ports.StripStats

	chunkBuffer := p.chunkBufferPool.Get()
	defer p.chunkBufferPool.Put(chunkBuffer)

	lineBuffer := p.lineBufferPool.Get()
	defer p.lineBufferPool.Put(lineBuffer)

	emit := func(line []byte) error {
		stats.LinesRead++
		residue := p.stripLine(line)
		if len(residue) == 0 && !p.keepBlankLines {
			return nil
		}
		stats.LinesKept++
		return fn(string(residue))
	}

	// afterCR is set when the previous byte was a CR, possibly in the
	// previous chunk, so that a following LF is swallowed.
	afterCR := false
	pending := false

	for reads := 0; ; reads++ {
		if reads%ContextCheckFrequency == 0 {
			select {
			case <-ctx.Done():
				p.logger.Warn("Stripping cancelled by context", "error", ctx.Err())
				return stats, ctx.Err()
			default:
			}
		}

		n, err := r.Read(chunkBuffer.Bytes)
		if n > 0 {
			stats.BytesRead += int64(n)
			chunk := chunkBuffer.Bytes[:n]
			lineStart := 0

			for i := 0; i < n; i++ {
				b := chunk[i]
				if afterCR {
					afterCR = false
					if b == LF {
						lineStart = i + 1
						continue
					}
				}
				if b != LF && b != CR {
					continue
				}

				line := chunk[lineStart:i]
				if pending {
					lineBuffer.Bytes = append(lineBuffer.Bytes, line...)
					line = lineBuffer.Bytes
				}
				if emitErr := emit(line); emitErr != nil {
					return stats, emitErr
				}
				lineBuffer.Bytes = lineBuffer.Bytes[:0]
				pending = false
				lineStart = i + 1
				afterCR = b == CR
			}

			// Carry a partial line over to the next chunk
			if lineStart < n {
				lineBuffer.Bytes = append(lineBuffer.Bytes, chunk[lineStart:]...)
				pending = true
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.logger.Warn("Error reading from input", "error", err)
				return stats, fmt.Errorf("read source: %w", err)
			}

			if pending {
				if emitErr := emit(lineBuffer.Bytes); emitErr != nil {
					return stats, emitErr
				}
			}
			break
		}
	}

	p.logger.Debug("Stripping completed",
		"lines_read", stats.LinesRead,
		"lines_kept", stats.LinesKept,
		"bytes_read", stats.BytesRead,
		"duration", time.Since(startTime),
	)

	return stats, nil
}

// stripLine removes the comment, if any, and surrounding spaces and tabs.
func (p *Processor) stripLine(line []byte) []byte {
	return bytes.Trim(p.stripComment(line), " \t")
}

// stripComment cuts line at the earliest comment marker that is not inside a
// double-quoted string or a single-quoted character literal. A backslash
// inside either escapes the next byte.
func (p *Processor) stripComment(line []byte) []byte {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		if c == '"' || (c == '\'' && opensCharLiteral(line, i)) {
			quote = c
			continue
		}
		for _, m := range p.markers {
			if bytes.HasPrefix(line[i:], m) {
				return line[:i]
			}
		}
	}
	return line
}

// opensCharLiteral reports whether the single quote at line[i] starts a
// character literal. A quote right after an identifier character, as in the
// Z80 register af', does not.
func opensCharLiteral(line []byte, i int) bool {
	if i == 0 {
		return true
	}
	c := line[i-1]
	return !(c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z')
}
