// Package tile implements the top-level tile/layer driver (§4.8): iterating
// layers, dispatching columns by name, and assembling Feature records from
// the geometry and property column codecs.
package tile

import (
	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/internal/bitutil"
)

// BufferStream is a monotonic read cursor over an immutable byte slice (§4.1).
// It never seeks backward; every read advances the cursor or fails with
// errs.ErrEndOfBuffer, leaving the cursor position undefined for further use.
type BufferStream struct {
	data []byte
	pos  int
}

// NewBufferStream wraps data as a BufferStream starting at offset 0.
func NewBufferStream(data []byte) *BufferStream {
	return &BufferStream{data: data}
}

// Pos returns the current read offset.
func (b *BufferStream) Pos() int { return b.pos }

// Remaining returns the number of unread bytes.
func (b *BufferStream) Remaining() int { return len(b.data) - b.pos }

// Peek returns the next byte without advancing the cursor.
func (b *BufferStream) Peek() (byte, error) {
	if b.pos >= len(b.data) {
		return 0, errs.ErrEndOfBuffer
	}

	return b.data[b.pos], nil
}

// ReadByte reads and returns the next byte.
func (b *BufferStream) ReadByte() (byte, error) {
	v, err := b.Peek()
	if err != nil {
		return 0, err
	}
	b.pos++

	return v, nil
}

// ReadN consumes and returns the next n bytes as a slice into the underlying
// buffer (not a copy).
func (b *BufferStream) ReadN(n int) ([]byte, error) {
	if b.pos+n > len(b.data) {
		return nil, errs.ErrEndOfBuffer
	}
	out := b.data[b.pos : b.pos+n]
	b.pos += n

	return out, nil
}

// ReadVarint32 reads a single uint32 varint and advances the cursor.
func (b *BufferStream) ReadVarint32() (uint32, error) {
	v, n, err := bitutil.GetVarint32(b.data, b.pos)
	if err != nil {
		return 0, err
	}
	b.pos += n

	return v, nil
}

// ReadVarint64 reads a single uint64 varint and advances the cursor.
func (b *BufferStream) ReadVarint64() (uint64, error) {
	v, n, err := bitutil.GetVarint64(b.data, b.pos)
	if err != nil {
		return 0, err
	}
	b.pos += n

	return v, nil
}
