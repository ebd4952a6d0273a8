package internal

import (
	"bytes"
	"sync"
)

// maxPooledBuffer is the largest buffer returned to BufferPool. Batches carrying skins grow buffers to
// several megabytes and keeping those alive would pin the memory for the lifetime of the process.
const maxPooledBuffer = 1024 * 1024

var BufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}

// PutBuffer resets buf and returns it to BufferPool.
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	buf.Reset()
	BufferPool.Put(buf)
}
