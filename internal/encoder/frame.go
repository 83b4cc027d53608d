package encoder

import "sync"

// Frame is one rendered video frame. Pix holds Width*Height*4 bytes of
// row-major RGBA without padding. Index counts from 0 and must reach the
// encoder without gaps.
type Frame struct {
	Index uint32
	Pix   []byte

	// Buf, when set, is the FramePool buffer behind Pix. The encoder returns
	// it to its pool once the frame is written.
	Buf *[]byte
}

// FramePool recycles pixel buffers between the renderer and the encoder so a
// long render does not allocate a fresh frame every tick. Buffers travel as
// *[]byte so neither Get nor Put allocates.
type FramePool struct {
	size int
	pool sync.Pool
}

// NewFramePool returns a pool of size-byte buffers.
func NewFramePool(size int) *FramePool {
	p := &FramePool{size: size}
	p.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return p
}

// Get returns a buffer of the pool's size. Its contents are undefined.
func (p *FramePool) Get() *[]byte {
	buf := p.pool.Get().(*[]byte)
	*buf = (*buf)[:p.size]
	return buf
}

// Put returns buf to the pool. Buffers of the wrong size are dropped.
func (p *FramePool) Put(buf *[]byte) {
	if buf == nil || cap(*buf) < p.size {
		return
	}
	p.pool.Put(buf)
}
