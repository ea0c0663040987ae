package internal

import (
	"bytes"
	"sync"
)

// BufferPool holds reusable buffers for encoding and decoding wire frames.
var BufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}

// GetBuffer returns an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf := BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool.
func PutBuffer(buf *bytes.Buffer) {
	BufferPool.Put(buf)
}

// CopyBytes returns a copy of the buffer's contents that stays valid after the buffer is reused.
func CopyBytes(buf *bytes.Buffer) []byte {
	return bytes.Clone(buf.Bytes())
}
