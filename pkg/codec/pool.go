package codec

import (
	"bytes"
	"sync"
)

// bufferPool reduces GC pressure from the scratch buffers every
// Encode call allocates; attribute blobs are re-encoded often (on
// every Add/Update of a user, note, or resource).
var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	bufferPool.Put(buf)
}
