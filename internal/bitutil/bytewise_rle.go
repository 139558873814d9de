package bitutil

import (
	"fmt"

	"github.com/maplibre/mlt-go/errs"
)

// maxLiteralRun is the largest literal batch a single control byte can
// describe (ORC reserves the control byte's negative range for -128..-1,
// i.e. 1..128 literal bytes).
const maxLiteralRun = 128

// maxRepeatRun is the largest repeated-byte run a single control byte can
// describe: a non-negative control byte c repeats the following byte c+3
// times, and c is itself a signed byte so it tops out at 127.
const maxRepeatRun = 127 + 3 // 130

// DecodeByteRLE decodes an ORC-style byte run-length-encoded stream.
//
// Each record starts with a signed control byte c:
//   - c < 0: the next -c bytes are literal values, copied verbatim.
//   - c >= 0: the single byte that follows is repeated c+3 times.
//
// Decoding stops once n output bytes have been produced.
func DecodeByteRLE(data []byte, n int) ([]byte, int, error) {
	out := make([]byte, 0, n)
	pos := 0

	for len(out) < n {
		if pos >= len(data) {
			return nil, 0, errs.ErrEndOfBuffer
		}

		c := int8(data[pos])
		pos++

		if c < 0 {
			count := -int(c)
			if pos+count > len(data) {
				return nil, 0, errs.ErrEndOfBuffer
			}
			out = append(out, data[pos:pos+count]...)
			pos += count
		} else {
			if pos >= len(data) {
				return nil, 0, errs.ErrEndOfBuffer
			}
			count := int(c) + 3
			b := data[pos]
			pos++
			for i := 0; i < count; i++ {
				out = append(out, b)
			}
		}
	}

	if len(out) != n {
		return nil, 0, fmt.Errorf("%w: byte-RLE produced %d bytes, wanted %d", errs.ErrGeometryError, len(out), n)
	}

	return out, pos, nil
}

// EncodeByteRLE greedily emits runs of 3 or more repeated bytes as repeat
// records and everything else as literal batches of up to 128 bytes, the
// policy described for the reference encoder.
func EncodeByteRLE(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/maxLiteralRun+1)

	i := 0
	for i < len(data) {
		runLen := 1
		for i+runLen < len(data) && data[i+runLen] == data[i] && runLen < maxRepeatRun {
			runLen++
		}

		if runLen >= 3 {
			out = append(out, byte(int8(runLen-3)), data[i])
			i += runLen

			continue
		}

		// Accumulate a literal batch until a run of >= 3 identical bytes appears
		// or the 128-byte literal cap is hit.
		litStart := i
		i++
		for i < len(data) && i-litStart < maxLiteralRun {
			rep := 1
			for i+rep < len(data) && data[i+rep] == data[i] && rep < 3 {
				rep++
			}
			if rep >= 3 {
				break
			}
			i++
		}

		litLen := i - litStart
		out = append(out, byte(int8(-litLen)))
		out = append(out, data[litStart:i]...)
	}

	return out
}
