package optimize

import (
	"bytes"
	"io"
	"sync"
)

// BufferPool recycles bytes.Buffers for reading response bodies.
type BufferPool struct {
	pool sync.Pool
	// maxRetained caps the capacity of buffers put back; larger ones are
	// dropped so one huge body does not pin memory.
	maxRetained int
}

// NewBufferPool creates a pool whose fresh buffers start with initialSize
// bytes of capacity.
func NewBufferPool(initialSize, maxRetained int) *BufferPool {
	return &BufferPool{
		maxRetained: maxRetained,
		pool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, initialSize))
			},
		},
	}
}

// Get returns an empty buffer.
func (p *BufferPool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put resets buf and returns it to the pool.
func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || (p.maxRetained > 0 && buf.Cap() > p.maxRetained) {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}

// ReadAll reads r through a pooled buffer and returns a copy the caller
// owns.
func (p *BufferPool) ReadAll(r io.Reader) ([]byte, error) {
	buf := p.Get()
	defer p.Put(buf)

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}
