package bitutil

import (
	"fmt"

	"github.com/maplibre/mlt-go/errs"
)

// DecodeComponentwiseDelta interprets already zigzag-decoded values as
// interleaved (x, y) pairs: the first pair is absolute, each subsequent pair is a delta
// against the previous pair's matching component. values must have even
// length.
func DecodeComponentwiseDelta(values []int32) ([]int32, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("%w: componentwise delta buffer length %d is odd", errs.ErrGeometryError, len(values))
	}

	out := make([]int32, len(values))
	var prevX, prevY int32

	for i := 0; i+1 < len(values); i += 2 {
		prevX += values[i]
		prevY += values[i+1]
		out[i] = prevX
		out[i+1] = prevY
	}

	return out, nil
}

// EncodeComponentwiseDelta is the inverse of DecodeComponentwiseDelta: it
// turns absolute interleaved (x, y) pairs into delta form, ready for zigzag
// encoding by the caller.
func EncodeComponentwiseDelta(values []int32) ([]int32, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("%w: componentwise delta buffer length %d is odd", errs.ErrGeometryError, len(values))
	}

	out := make([]int32, len(values))
	var prevX, prevY int32

	for i := 0; i+1 < len(values); i += 2 {
		out[i] = values[i] - prevX
		out[i+1] = values[i+1] - prevY
		prevX = values[i]
		prevY = values[i+1]
	}

	return out, nil
}
