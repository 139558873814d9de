package bitutil

import (
	"encoding/binary"
	"fmt"

	"github.com/maplibre/mlt-go/errs"
)

// AppendVarint32 appends an unsigned 32-bit value as an LSB-first, 7-bit-group
// varint (1..5 bytes) to buf and returns the extended slice.
func AppendVarint32(buf []byte, v uint32) []byte {
	return binary.AppendUvarint(buf, uint64(v))
}

// AppendVarint64 appends an unsigned 64-bit value as a varint (1..10 bytes).
func AppendVarint64(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}

// GetVarint32 decodes a single uint32 varint from data starting at offset,
// returning the value and the number of bytes consumed.
func GetVarint32(data []byte, offset int) (uint32, int, error) {
	v, n, err := GetVarint64(data, offset)
	if err != nil {
		return 0, 0, err
	}
	if v > uint64(^uint32(0)) {
		return 0, 0, fmt.Errorf("%w: value %d does not fit in 32 bits", errs.ErrVarintOverflow, v)
	}

	return uint32(v), n, nil
}

// GetVarint64 decodes a single uint64 varint from data starting at offset,
// returning the value and the number of bytes consumed.
//
// Fails with errs.ErrEndOfBuffer if data is exhausted before the continuation
// bit chain ends, and errs.ErrVarintOverflow if more than 10 bytes (the most
// a 64-bit varint can occupy) are consumed without terminating.
func GetVarint64(data []byte, offset int) (uint64, int, error) {
	if offset >= len(data) {
		return 0, 0, errs.ErrEndOfBuffer
	}

	v, n := binary.Uvarint(data[offset:])
	switch {
	case n > 0:
		return v, n, nil
	case n == 0:
		return 0, 0, errs.ErrEndOfBuffer
	default:
		return 0, 0, fmt.Errorf("%w: varint longer than %d bytes", errs.ErrVarintOverflow, binary.MaxVarintLen64)
	}
}

// Len32 returns the number of bytes AppendVarint32 would emit for v.
func Len32(v uint32) int {
	return Len64(uint64(v))
}

// Len64 returns the number of bytes AppendVarint64 would emit for v.
func Len64(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}
