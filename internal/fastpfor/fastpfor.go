// Package fastpfor implements the FastPFOR+VariableByte composite physical
// codec named in the MLT stream codec (PhysicalLevelTechnique=FAST_PFOR).
//
// No dependency in this module's reference corpus implements PFOR-family bit
// packing, so this is a from-scratch implementation built on the standard
// library, following the textual algorithm description: values are grouped
// into blocks of 256, each block bit-packed at the minimum width that holds
// every value in the block, and a partial final block falls back to
// VariableByte (a plain unsigned-varint sequence). See DESIGN.md for why this
// carries no third-party dependency.
package fastpfor

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/maplibre/mlt-go/errs"
)

// BlockSize is the number of values packed per bit-width block.
const BlockSize = 256

// PageSize is the boundary, in values, the reference format documents between
// successive bit-packing pages. This implementation packs one bit width per
// block regardless of page boundary, so PageSize has no effect on the wire
// layout here beyond documenting the boundary named in the spec.
const PageSize = 65536

// Encode packs values into the FastPFOR+VariableByte composite format.
func Encode(values []uint32) []byte {
	out := make([]byte, 0, len(values)*4)

	i := 0
	for i+BlockSize <= len(values) {
		out = append(out, encodeBlock(values[i:i+BlockSize])...)
		i += BlockSize
	}

	// Partial final block: VariableByte (plain uvarint sequence).
	for ; i < len(values); i++ {
		out = binary.AppendUvarint(out, uint64(values[i]))
	}

	return out
}

// Decode unpacks exactly numValues uint32 values from data.
func Decode(data []byte, numValues int) ([]uint32, error) {
	out := make([]uint32, 0, numValues)
	pos := 0

	for len(out)+BlockSize <= numValues {
		block, n, err := decodeBlock(data, pos)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		pos += n
	}

	for len(out) < numValues {
		if pos >= len(data) {
			return nil, errs.ErrEndOfBuffer
		}
		v, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: malformed VariableByte remainder", errs.ErrVarintOverflow)
		}
		out = append(out, uint32(v)) //nolint:gosec
		pos += n
	}

	return out, nil
}

func encodeBlock(block []uint32) []byte {
	var maxV uint32
	for _, v := range block {
		if v > maxV {
			maxV = v
		}
	}

	width := bits.Len32(maxV)
	out := make([]byte, 1, 1+(len(block)*width+7)/8)
	out[0] = byte(width)

	var bitBuf uint64
	var bitCount uint
	for _, v := range block {
		bitBuf |= uint64(v) << bitCount
		bitCount += uint(width)
		for bitCount >= 8 {
			out = append(out, byte(bitBuf))
			bitBuf >>= 8
			bitCount -= 8
		}
	}
	if bitCount > 0 {
		out = append(out, byte(bitBuf))
	}

	return out
}

func decodeBlock(data []byte, offset int) ([]uint32, int, error) {
	if offset >= len(data) {
		return nil, 0, errs.ErrEndOfBuffer
	}

	width := uint(data[offset])
	byteLen := (BlockSize*int(width) + 7) / 8
	if offset+1+byteLen > len(data) {
		return nil, 0, errs.ErrEndOfBuffer
	}

	packed := data[offset+1 : offset+1+byteLen]
	out := make([]uint32, BlockSize)

	if width == 0 {
		return out, 1 + byteLen, nil
	}

	var bitBuf uint64
	var bitCount uint
	bytePos := 0
	mask := uint64(1)<<width - 1

	for i := 0; i < BlockSize; i++ {
		for bitCount < width {
			if bytePos >= len(packed) {
				return nil, 0, errs.ErrEndOfBuffer
			}
			bitBuf |= uint64(packed[bytePos]) << bitCount
			bytePos++
			bitCount += 8
		}
		out[i] = uint32(bitBuf & mask)
		bitBuf >>= width
		bitCount -= width
	}

	return out, 1 + byteLen, nil
}
