package encoding

import (
	"math"

	"github.com/maplibre/mlt-go/endian"
	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/internal/bitutil"
)

// floatEngine is the byte order every float property stream is packed with
// (§4.7 "raw little-endian bytes for floats"); the format never offers a
// big-endian variant, so this is fixed rather than plumbed through
// EncodeOptions.
var floatEngine = endian.GetLittleEndianEngine()

// DecodeFloat32Stream decodes count little-endian float32 values. Float32
// and float64 are the scalar property types the tile format never runs
// through a logical/physical transform pipeline.
func DecodeFloat32Stream(payload []byte, count int) ([]float32, error) {
	if len(payload) < count*4 {
		return nil, errs.ErrEndOfBuffer
	}

	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(floatEngine.Uint32(payload[i*4:]))
	}

	return out, nil
}

// EncodeFloat32Stream appends count little-endian float32 values to a new
// byte slice.
func EncodeFloat32Stream(values []float32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = floatEngine.AppendUint32(out, math.Float32bits(v))
	}

	return out
}

// DecodeFloat64Stream decodes count little-endian float64 values.
func DecodeFloat64Stream(payload []byte, count int) ([]float64, error) {
	if len(payload) < count*8 {
		return nil, errs.ErrEndOfBuffer
	}

	out := make([]float64, count)
	for i := range out {
		out[i] = math.Float64frombits(floatEngine.Uint64(payload[i*8:]))
	}

	return out, nil
}

// EncodeFloat64Stream appends count little-endian float64 values to a new
// byte slice.
func EncodeFloat64Stream(values []float64) []byte {
	out := make([]byte, 0, len(values)*8)
	for _, v := range values {
		out = floatEngine.AppendUint64(out, math.Float64bits(v))
	}

	return out
}

// DecodeBoolStream decodes count booleans from an ORC byte-RLE stream: the
// boolean present-stream and property columns share this shape (§4.7).
func DecodeBoolStream(payload []byte, count int) ([]bool, error) {
	if count == 0 {
		return nil, nil
	}
	bytes, _, err := bitutil.DecodeByteRLE(payload, (count+7)/8)
	if err != nil {
		return nil, err
	}

	out := make([]bool, count)
	for i := range out {
		out[i] = bytes[i/8]&(1<<uint(i%8)) != 0
	}

	return out, nil
}

// EncodeBoolStream packs count booleans into a bitset, then ORC byte-RLEs it.
func EncodeBoolStream(values []bool) []byte {
	packed := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			packed[i/8] |= 1 << uint(i%8)
		}
	}

	return bitutil.EncodeByteRLE(packed)
}
