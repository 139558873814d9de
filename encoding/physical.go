package encoding

import (
	"fmt"

	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/internal/bitutil"
	"github.com/maplibre/mlt-go/internal/fastpfor"
	"github.com/maplibre/mlt-go/stream"
)

// decodePhysical reads exactly count unsigned integers from payload using the
// given physical technique (§4.4.1 step 1).
func decodePhysical(payload []byte, count int, technique stream.PhysicalLevelTechnique) ([]uint64, error) {
	switch technique {
	case stream.PhysicalVarint:
		out := make([]uint64, count)
		pos := 0
		for i := 0; i < count; i++ {
			v, n, err := bitutil.GetVarint64(payload, pos)
			if err != nil {
				return nil, err
			}
			out[i] = v
			pos += n
		}

		return out, nil
	case stream.PhysicalFastPFOR:
		words, err := fastpfor.Decode(payload, count)
		if err != nil {
			return nil, err
		}
		out := make([]uint64, count)
		for i, w := range words {
			out[i] = uint64(w)
		}

		return out, nil
	case stream.PhysicalALP:
		return nil, fmt.Errorf("%w: ALP physical technique", errs.ErrUnsupportedEncoding)
	default:
		return nil, fmt.Errorf("%w: physical technique %s is not valid for an integer stream", errs.ErrUnsupportedEncoding, technique)
	}
}

// encodePhysical packs values using the given physical technique, returning
// the byte payload.
func encodePhysical(values []uint64, technique stream.PhysicalLevelTechnique) ([]byte, error) {
	switch technique {
	case stream.PhysicalVarint:
		buf := make([]byte, 0, len(values)*2)
		for _, v := range values {
			buf = bitutil.AppendVarint64(buf, v)
		}

		return buf, nil
	case stream.PhysicalFastPFOR:
		words := make([]uint32, len(values))
		for i, v := range values {
			if v > uint64(^uint32(0)) {
				return nil, fmt.Errorf("%w: value %d does not fit FastPFOR's 32-bit words", errs.ErrUnsupportedEncoding, v)
			}
			words[i] = uint32(v)
		}

		return fastpfor.Encode(words), nil
	default:
		return nil, fmt.Errorf("%w: physical technique %s is not supported by the encoder", errs.ErrUnsupportedEncoding, technique)
	}
}
