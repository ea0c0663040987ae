package internal

import (
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Encode runs f on a writer backed by a pooled buffer and returns a copy of what it wrote.
func Encode(f func(w *protocol.Writer)) []byte {
	buf := GetBuffer()
	defer PutBuffer(buf)

	f(protocol.NewWriter(buf, 0))
	return CopyBytes(buf)
}

// Decode runs f on a reader over b. A read past the end of b, or bytes left unread by f, fail the frame
// as a whole.
func Decode(b []byte, f func(r *protocol.Reader)) (err error) {
	buf := GetBuffer()
	defer PutBuffer(buf)
	buf.Write(b)

	defer func() {
		if r := recover(); r != nil {
			err = oerror.New("malformed frame: %v", r)
		}
	}()
	f(protocol.NewReader(buf, 0, false))
	if buf.Len() != 0 {
		return oerror.New("malformed frame: %d trailing bytes", buf.Len())
	}
	return nil
}
