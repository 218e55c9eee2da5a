package ports

import (
	"context"
	"io"
)

// StripStats describes a single pass of a Stripper over a stream.
type StripStats struct {
	LinesRead int
	LinesKept int
	BytesRead int64
}

// Stripper removes comments and padding from a source stream.
type Stripper interface {
	// Strip reads r to EOF and returns the residue. The reader is never closed.
	Strip(ctx context.Context, r io.Reader) (string, error)

	// StripTo reads r to EOF and writes the residue to w.
	StripTo(ctx context.Context, r io.Reader, w io.Writer) (StripStats, error)
}
