package encoding

import (
	"fmt"

	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/internal/bitutil"
	"github.com/maplibre/mlt-go/internal/curve"
	"github.com/maplibre/mlt-go/stream"
)

// DecodeIntStream decodes an integer stream per the combination table in
// §4.4.1. isSigned controls whether the NONE/NONE and RLE/NONE pass-through
// paths zigzag-decode their values; it is carried as an explicit argument
// rather than a type tag, per §9's design note.
//
// MORTON/NONE and MORTON/DELTA (delta-coded Morton codes) produce
// 2*meta.NumValues values, one (x, y) pair per decoded code; every other
// combination produces meta.NumValues values.
func DecodeIntStream(meta stream.Metadata, payload []byte, isSigned bool) ([]int64, error) {
	t1, t2 := meta.LogicalLevelTechnique1, meta.LogicalLevelTechnique2

	switch {
	case t1 == stream.LogicalNone && t2 == stream.LogicalNone:
		raw, err := decodePhysical(payload, int(meta.NumValues), meta.PhysicalLevelTechnique)
		if err != nil {
			return nil, err
		}

		return decodePlain(raw, isSigned), nil

	case t1 == stream.LogicalDelta && t2 == stream.LogicalNone:
		raw, err := decodePhysical(payload, int(meta.NumValues), meta.PhysicalLevelTechnique)
		if err != nil {
			return nil, err
		}

		return deltaDecode(raw), nil

	case t1 == stream.LogicalDelta && t2 == stream.LogicalRLE:
		return decodeDeltaRLE(meta, payload)

	case t1 == stream.LogicalComponentwiseDelta && t2 == stream.LogicalNone:
		raw, err := decodePhysical(payload, int(meta.NumValues), meta.PhysicalLevelTechnique)
		if err != nil {
			return nil, err
		}

		return componentwiseDeltaDecode(raw)

	case t1 == stream.LogicalRLE && t2 == stream.LogicalNone:
		return decodeRLE(meta, payload, isSigned)

	case t1 == stream.LogicalMorton && (t2 == stream.LogicalNone || t2 == stream.LogicalDelta):
		return decodeMorton(meta, payload)

	case t1 == stream.LogicalPseudodecimal || t2 == stream.LogicalPseudodecimal:
		return nil, fmt.Errorf("%w: PSEUDODECIMAL logical technique", errs.ErrUnsupportedEncoding)

	default:
		return nil, fmt.Errorf("%w: logical technique combination (%s, %s)", errs.ErrUnsupportedEncoding, t1, t2)
	}
}

func decodePlain(raw []uint64, isSigned bool) []int64 {
	out := make([]int64, len(raw))
	for i, v := range raw {
		if isSigned {
			out[i] = bitutil.ZigZagDecode64(v)
		} else {
			out[i] = int64(v)
		}
	}

	return out
}

func deltaDecode(raw []uint64) []int64 {
	out := make([]int64, len(raw))
	var acc int64
	for i, v := range raw {
		acc += bitutil.ZigZagDecode64(v)
		out[i] = acc
	}

	return out
}

func decodeDeltaRLE(meta stream.Metadata, payload []byte) ([]int64, error) {
	runs := int(meta.Runs)
	raw, err := decodePhysical(payload, runs*2, meta.PhysicalLevelTechnique)
	if err != nil {
		return nil, err
	}
	runLengths, runValues := raw[:runs], raw[runs:]

	deltasRaw, err := rleExpand(runLengths, runValues, int(meta.NumRleValues))
	if err != nil {
		return nil, err
	}

	return deltaDecode(deltasRaw), nil
}

func decodeRLE(meta stream.Metadata, payload []byte, isSigned bool) ([]int64, error) {
	runs := int(meta.Runs)
	raw, err := decodePhysical(payload, runs*2, meta.PhysicalLevelTechnique)
	if err != nil {
		return nil, err
	}
	runLengths, runValues := raw[:runs], raw[runs:]

	expanded, err := rleExpand(runLengths, runValues, int(meta.NumRleValues))
	if err != nil {
		return nil, err
	}

	return decodePlain(expanded, isSigned), nil
}

func componentwiseDeltaDecode(raw []uint64) ([]int64, error) {
	deltas := make([]int32, len(raw))
	for i, v := range raw {
		d := bitutil.ZigZagDecode64(v)
		if d > int64(1<<31-1) || d < int64(-1<<31) {
			return nil, fmt.Errorf("%w: componentwise delta value %d overflows 32 bits", errs.ErrGeometryError, d)
		}
		deltas[i] = int32(d)
	}

	abs, err := bitutil.DecodeComponentwiseDelta(deltas)
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(abs))
	for i, v := range abs {
		out[i] = int64(v)
	}

	return out, nil
}

func decodeMorton(meta stream.Metadata, payload []byte) ([]int64, error) {
	raw, err := decodePhysical(payload, int(meta.NumValues), meta.PhysicalLevelTechnique)
	if err != nil {
		return nil, err
	}

	codes := raw
	// A delta-coded Morton sequence is signaled by LogicalDelta in the second
	// logical technique slot, which is how EncodeMortonVertices writes it
	// when deltaCoded is set.
	if meta.LogicalLevelTechnique2 == stream.LogicalDelta {
		deltas := make([]int64, len(raw))
		for i, v := range raw {
			deltas[i] = bitutil.ZigZagDecode64(v)
		}
		codes = curve.AccumulateDelta(deltas)
	}

	out := make([]int64, 0, 2*len(codes))
	for _, code := range codes {
		x, y := curve.Decode(code, uint(meta.NumBits), int32(meta.CoordShift)) //nolint:gosec
		out = append(out, int64(x), int64(y))
	}

	return out, nil
}

// EncodeOptions configures the integer stream encoder's candidate policy
// (§4.4.2).
type EncodeOptions struct {
	// UseFastPFOR enables the FastPFOR physical technique for 32-bit-wide
	// candidates; the chosen technique also packs the flattened run-length
	// and run-value arrays of the RLE and delta+RLE candidates.
	UseFastPFOR bool
}

// EncodeIntStream chooses the smallest of the four candidate encodings
// (plain, delta, RLE, delta+RLE) for values, per §4.4.2. Ties are broken in
// that order (plain < delta < RLE < delta+RLE). A single-run RLE candidate
// ("const stream") is kept even if not the smallest, since the geometry
// decoder uses it as a structural hint (§4.4.2 policy).
func EncodeIntStream(values []int64, isSigned bool, opts EncodeOptions) (stream.Metadata, []byte, error) {
	physTech := stream.PhysicalVarint
	if opts.UseFastPFOR && fitsUint32(values, isSigned) {
		physTech = stream.PhysicalFastPFOR
	}

	type candidate struct {
		meta    stream.Metadata
		payload []byte
		isConst bool
	}

	candidates := make([]candidate, 0, 4)

	// Plain.
	{
		raw := make([]uint64, len(values))
		for i, v := range values {
			raw[i] = encodeScalar(v, isSigned)
		}
		payload, err := encodePhysical(raw, physTech)
		if err != nil {
			return stream.Metadata{}, nil, err
		}
		candidates = append(candidates, candidate{
			meta: stream.Metadata{
				LogicalLevelTechnique1: stream.LogicalNone,
				LogicalLevelTechnique2: stream.LogicalNone,
				PhysicalLevelTechnique: physTech,
				NumValues:              uint32(len(values)), //nolint:gosec
				ByteLength:              uint32(len(payload)), //nolint:gosec
			},
			payload: payload,
		})
	}

	// Delta.
	if len(values) > 0 {
		raw := make([]uint64, len(values))
		var prev int64
		for i, v := range values {
			delta := v - prev
			raw[i] = bitutil.ZigZagEncode64(delta)
			prev = v
		}
		payload, err := encodePhysical(raw, physTech)
		if err != nil {
			return stream.Metadata{}, nil, err
		}
		candidates = append(candidates, candidate{
			meta: stream.Metadata{
				LogicalLevelTechnique1: stream.LogicalDelta,
				LogicalLevelTechnique2: stream.LogicalNone,
				PhysicalLevelTechnique: physTech,
				NumValues:              uint32(len(values)), //nolint:gosec
				ByteLength:              uint32(len(payload)), //nolint:gosec
			},
			payload: payload,
		})
	}

	// RLE.
	if len(values) > 0 {
		raw := make([]uint64, len(values))
		for i, v := range values {
			raw[i] = encodeScalar(v, isSigned)
		}
		runLengths, runValues := rleEncode(raw)
		if rleRatio(len(values), len(runLengths)) >= 2 || len(runLengths) == 1 {
			flat := append(append([]uint64{}, runLengths...), runValues...)
			payload, err := encodePhysical(flat, physTech)
			if err != nil {
				return stream.Metadata{}, nil, err
			}
			candidates = append(candidates, candidate{
				meta: stream.Metadata{
					LogicalLevelTechnique1: stream.LogicalRLE,
					LogicalLevelTechnique2: stream.LogicalNone,
					PhysicalLevelTechnique: physTech,
					NumValues:              uint32(len(values)),      //nolint:gosec
					ByteLength:              uint32(len(payload)),     //nolint:gosec
					Runs:                    uint32(len(runLengths)), //nolint:gosec
					NumRleValues:            uint32(len(values)),     //nolint:gosec
				},
				payload: payload,
				isConst: len(runLengths) == 1,
			})
		}
	}

	// Delta+RLE.
	if len(values) > 0 {
		deltas := make([]uint64, len(values))
		var prev int64
		for i, v := range values {
			delta := v - prev
			deltas[i] = bitutil.ZigZagEncode64(delta)
			prev = v
		}
		runLengths, runValues := rleEncode(deltas)
		if rleRatio(len(values), len(runLengths)) >= 2 {
			flat := append(append([]uint64{}, runLengths...), runValues...)
			payload, err := encodePhysical(flat, physTech)
			if err != nil {
				return stream.Metadata{}, nil, err
			}
			candidates = append(candidates, candidate{
				meta: stream.Metadata{
					LogicalLevelTechnique1: stream.LogicalDelta,
					LogicalLevelTechnique2: stream.LogicalRLE,
					PhysicalLevelTechnique: physTech,
					NumValues:              uint32(len(values)),      //nolint:gosec
					ByteLength:              uint32(len(payload)),     //nolint:gosec
					Runs:                    uint32(len(runLengths)), //nolint:gosec
					NumRleValues:            uint32(len(values)),     //nolint:gosec
				},
				payload: payload,
			})
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.isConst && !best.isConst {
			best = c

			continue
		}
		if !c.isConst && best.isConst {
			continue
		}
		if len(c.payload) < len(best.payload) {
			best = c
		}
	}

	return best.meta, best.payload, nil
}

func encodeScalar(v int64, isSigned bool) uint64 {
	if isSigned {
		return bitutil.ZigZagEncode64(v)
	}

	return uint64(v)
}

func fitsUint32(values []int64, isSigned bool) bool {
	for _, v := range values {
		s := encodeScalar(v, isSigned)
		if s > uint64(^uint32(0)) {
			return false
		}
	}

	return true
}

// EncodeComponentwiseDeltaStream encodes an interleaved (x, y) sequence using
// the COMPONENTWISE_DELTA logical technique: each pair is delta-coded against
// the previous pair's matching component, then zigzag and physically packed.
// This is the vertex stream encoding the geometry column encoder always uses
// (§4.5 "Assembly"), bypassing EncodeIntStream's plain/delta/RLE chooser.
func EncodeComponentwiseDeltaStream(values []int64, opts EncodeOptions) (stream.Metadata, []byte, error) {
	abs := make([]int32, len(values))
	for i, v := range values {
		if v > int64(1<<31-1) || v < int64(-1<<31) {
			return stream.Metadata{}, nil, fmt.Errorf("%w: vertex coordinate %d overflows 32 bits", errs.ErrGeometryError, v)
		}
		abs[i] = int32(v)
	}

	deltas, err := bitutil.EncodeComponentwiseDelta(abs)
	if err != nil {
		return stream.Metadata{}, nil, err
	}

	raw := make([]uint64, len(deltas))
	for i, d := range deltas {
		raw[i] = bitutil.ZigZagEncode64(int64(d))
	}

	physTech := stream.PhysicalVarint
	if opts.UseFastPFOR {
		physTech = stream.PhysicalFastPFOR
	}

	payload, err := encodePhysical(raw, physTech)
	if err != nil {
		return stream.Metadata{}, nil, err
	}

	meta := stream.Metadata{
		LogicalLevelTechnique1: stream.LogicalComponentwiseDelta,
		LogicalLevelTechnique2: stream.LogicalNone,
		PhysicalLevelTechnique: physTech,
		NumValues:              uint32(len(values)), //nolint:gosec
		ByteLength:             uint32(len(payload)), //nolint:gosec
	}

	return meta, payload, nil
}

// EncodeMortonVertices encodes interleaved (x, y) vertices as Morton codes
// using numBits bits per axis and the given coordinate shift, producing a
// ready-to-write Metadata/payload pair with DictionaryType=Morton semantics
// handled by the caller (the geometry column codec).
func EncodeMortonVertices(vertices []int32, numBits uint32, coordShift uint32, deltaCoded bool, opts EncodeOptions) (stream.Metadata, []byte, error) {
	if len(vertices)%2 != 0 {
		return stream.Metadata{}, nil, fmt.Errorf("%w: odd vertex count for Morton encoding", errs.ErrGeometryError)
	}

	codes := make([]uint64, len(vertices)/2)
	for i := 0; i < len(vertices); i += 2 {
		codes[i/2] = curve.Encode(vertices[i], vertices[i+1], uint(numBits), int32(coordShift)) //nolint:gosec
	}

	raw := codes
	tech2 := stream.LogicalNone
	if deltaCoded {
		tech2 = stream.LogicalDelta
		raw = make([]uint64, len(codes))
		var prev int64
		for i, c := range codes {
			delta := int64(c) - prev
			raw[i] = bitutil.ZigZagEncode64(delta)
			prev = int64(c)
		}
	}

	physTech := stream.PhysicalVarint
	if opts.UseFastPFOR {
		fits := true
		for _, c := range raw {
			if c > uint64(^uint32(0)) {
				fits = false

				break
			}
		}
		if fits {
			physTech = stream.PhysicalFastPFOR
		}
	}

	payload, err := encodePhysical(raw, physTech)
	if err != nil {
		return stream.Metadata{}, nil, err
	}

	meta := stream.Metadata{
		LogicalLevelTechnique1: stream.LogicalMorton,
		LogicalLevelTechnique2: tech2,
		PhysicalLevelTechnique: physTech,
		NumValues:              uint32(len(codes)),    //nolint:gosec
		ByteLength:             uint32(len(payload)),  //nolint:gosec
		NumBits:                numBits,
		CoordShift:             coordShift,
	}

	return meta, payload, nil
}
