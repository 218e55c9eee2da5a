package pool

import "sync"

// maxGrowth bounds how far past its initial size a buffer may grow and still
// be returned to the pool.
const maxGrowth = 64

// BufferPool recycles byte slices used to build upper-cased lines.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a pool whose buffers start with capacity size.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get returns an empty buffer.
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put hands a buffer back. Buffers that grew for an unusually long line are
// dropped so a single huge input does not pin memory.
func (bp *BufferPool) Put(buffer *[]byte) {
	if cap(*buffer) > bp.size*maxGrowth {
		return
	}
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}
