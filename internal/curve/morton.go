// Package curve implements the space-filling curves used to key vertex
// dictionaries: Morton (bit-interleaved) codes and Hilbert (Skilling
// transpose) codes, each parametric on the number of bits per axis.
package curve

// Encode interleaves the bits of x and y (after adding shift, so negative
// coordinates become non-negative before interleaving) into a single Morton
// code using numBits bits per axis.
func Encode(x, y int32, numBits uint, shift int32) uint64 {
	ux := uint64(x + shift)
	uy := uint64(y + shift)

	return interleave(ux, numBits) | (interleave(uy, numBits) << 1)
}

// Decode splits a Morton code back into its (x, y) components, undoing the
// shift applied at encode time.
func Decode(code uint64, numBits uint, shift int32) (int32, int32) {
	ux := deinterleave(code, numBits)
	uy := deinterleave(code>>1, numBits)

	return int32(ux) - shift, int32(uy) - shift
}

// AccumulateDelta turns a sequence of delta-Morton codes into absolute codes
// via prefix sum, the "delta Morton" variant named in the stream metadata
// spec. The result is ready for per-element Decode.
func AccumulateDelta(deltas []int64) []uint64 {
	codes := make([]uint64, len(deltas))
	var acc int64
	for i, d := range deltas {
		acc += d
		codes[i] = uint64(acc)
	}

	return codes
}

// interleave spreads the low numBits bits of v so that each original bit i
// lands at position 2*i, leaving the odd bit positions free for the other axis.
func interleave(v uint64, numBits uint) uint64 {
	v &= (uint64(1) << numBits) - 1

	v = (v | (v << 16)) & 0x0000FFFF0000FFFF
	v = (v | (v << 8)) & 0x00FF00FF00FF00FF
	v = (v | (v << 4)) & 0x0F0F0F0F0F0F0F0F
	v = (v | (v << 2)) & 0x3333333333333333
	v = (v | (v << 1)) & 0x5555555555555555

	return v
}

// deinterleave is the inverse of interleave: it extracts every other bit of
// code starting at bit 0, compacting them back into the low numBits bits.
func deinterleave(code uint64, numBits uint) uint64 {
	v := code & 0x5555555555555555

	v = (v | (v >> 1)) & 0x3333333333333333
	v = (v | (v >> 2)) & 0x0F0F0F0F0F0F0F0F
	v = (v | (v >> 4)) & 0x00FF00FF00FF00FF
	v = (v | (v >> 8)) & 0x0000FFFF0000FFFF
	v = (v | (v >> 16)) & 0x00000000FFFFFFFF

	return v & ((uint64(1) << numBits) - 1)
}
