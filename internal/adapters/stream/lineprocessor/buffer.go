package lineprocessor

import "sync"

// ChunkBuffer holds one read from the source stream.
type ChunkBuffer struct {
	Bytes []byte
}

// ChunkBufferPool implements a pool of chunk buffers
type ChunkBufferPool struct {
	pool      sync.Pool
	chunkSize int
}

// NewChunkBufferPool creates a new chunk buffer pool
func NewChunkBufferPool(chunkSize int) *ChunkBufferPool {
	return &ChunkBufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, chunkSize)
				return &ChunkBuffer{Bytes: buf}
			},
		},
		chunkSize: chunkSize,
	}
}

// Get retrieves a chunk buffer from the pool
func (cbp *ChunkBufferPool) Get() *ChunkBuffer {
	buffer := cbp.pool.Get().(*ChunkBuffer)

	if cap(buffer.Bytes) < cbp.chunkSize {
		buffer.Bytes = make([]byte, cbp.chunkSize)
	} else {
		buffer.Bytes = buffer.Bytes[:cbp.chunkSize]
	}

	return buffer
}

// Put returns a chunk buffer to the pool
func (cbp *ChunkBufferPool) Put(cb *ChunkBuffer) {
	cbp.pool.Put(cb)
}

// LineBuffer accumulates a line that spans chunk boundaries.
type LineBuffer struct {
	Bytes []byte
}

// LineBufferPool implements a pool of line buffers for efficient reuse
type LineBufferPool struct {
	pool sync.Pool
}

// NewLineBufferPool creates a new line buffer pool
func NewLineBufferPool() *LineBufferPool {
	return &LineBufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				// Most source lines are under 256 bytes
				buf := make([]byte, 0, 256)
				return &LineBuffer{Bytes: buf}
			},
		},
	}
}

// Get retrieves a line buffer from the pool
func (lbp *LineBufferPool) Get() *LineBuffer {
	return lbp.pool.Get().(*LineBuffer)
}

// Put returns a line buffer to the pool
func (lbp *LineBufferPool) Put(lb *LineBuffer) {
	lb.Bytes = lb.Bytes[:0]
	lbp.pool.Put(lb)
}
