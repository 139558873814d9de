package column

import (
	"fmt"

	"github.com/maplibre/mlt-go/encoding"
	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/internal/bitutil"
	"github.com/maplibre/mlt-go/internal/pool"
	"github.com/maplibre/mlt-go/metadata"
	"github.com/maplibre/mlt-go/stream"
)

// encodePresentStream byte-RLE packs a present bitmap into a PRESENT stream.
func encodePresentStream(present bitutil.PackedBitset) stream.RawStream {
	bits := make([]bool, present.Len())
	for i := range bits {
		bits[i] = present.Test(i)
	}
	payload := encoding.EncodeBoolStream(bits)

	return stream.RawStream{
		Meta: stream.Metadata{
			PhysicalStreamType: stream.Present,
			NumValues:          uint32(present.Len()), //nolint:gosec
			ByteLength:         uint32(len(payload)),   //nolint:gosec
		},
		Payload: payload,
	}
}

// buildPresent packs an IndexMap (nil meaning "every row present") into a
// bitset, the inverse of buildIndexMap.
func buildPresent(indexMap []int32, numFeatures int) bitutil.PackedBitset {
	writer := bitutil.NewBitsetWriter(numFeatures)
	if indexMap == nil {
		for i := 0; i < numFeatures; i++ {
			writer.Set(i, true)
		}
	} else {
		for i, idx := range indexMap {
			writer.Set(i, idx != AbsentIndex)
		}
	}

	return bitutil.NewPackedBitset(writer.Bytes(), numFeatures)
}

// EncodeScalarColumn encodes a scalar PropertyColumn back into its wire
// streams (§4.7): a PRESENT stream only when the column carries one, then
// the data stream.
func EncodeScalarColumn(col *PropertyColumn, numFeatures int, opts encoding.EncodeOptions) ([]stream.RawStream, error) {
	var streams []stream.RawStream
	if col.IndexMap != nil {
		present := buildPresent(col.IndexMap, numFeatures)
		streams = append(streams, encodePresentStream(present))
	}

	var (
		meta    stream.Metadata
		payload []byte
		err     error
	)

	switch col.Type {
	case metadata.Bool:
		payload = encoding.EncodeBoolStream(col.Bools)
		meta = stream.Metadata{NumValues: uint32(len(col.Bools)), ByteLength: uint32(len(payload))} //nolint:gosec
	case metadata.Int32:
		values, done := pool.GetInt64Slice(len(col.Int32s))
		for i, v := range col.Int32s {
			values[i] = int64(v)
		}
		meta, payload, err = encoding.EncodeIntStream(values, true, opts)
		done()
	case metadata.UInt32:
		values, done := pool.GetInt64Slice(len(col.UInt32s))
		for i, v := range col.UInt32s {
			values[i] = int64(v)
		}
		meta, payload, err = encoding.EncodeIntStream(values, false, opts)
		done()
	case metadata.Int64:
		meta, payload, err = encoding.EncodeIntStream(col.Int64s, true, opts)
	case metadata.UInt64:
		values, done := pool.GetInt64Slice(len(col.UInt64s))
		for i, v := range col.UInt64s {
			values[i] = int64(v) //nolint:gosec
		}
		meta, payload, err = encoding.EncodeIntStream(values, false, opts)
		done()
	case metadata.Float32:
		payload = encoding.EncodeFloat32Stream(col.Float32s)
		meta = stream.Metadata{NumValues: uint32(len(col.Float32s)), ByteLength: uint32(len(payload))} //nolint:gosec
	case metadata.Float64:
		payload = encoding.EncodeFloat64Stream(col.Float64s)
		meta = stream.Metadata{NumValues: uint32(len(col.Float64s)), ByteLength: uint32(len(payload))} //nolint:gosec
	default:
		return nil, fmt.Errorf("%w: scalar column type %s", errs.ErrMetadataMismatch, col.Type)
	}
	if err != nil {
		return nil, err
	}
	meta.PhysicalStreamType = stream.Data
	streams = append(streams, stream.RawStream{Meta: meta, Payload: payload})

	return streams, nil
}

// EncodeStringColumnProperty encodes a string PropertyColumn (§4.6), always
// emitting a leading PRESENT stream, then the Plain layout streams. Picking
// the dictionary/FSST layouts is a size-based policy decision left to
// callers that want it; this always takes the simplest layout that every
// string column legally supports.
func EncodeStringColumnProperty(col *PropertyColumn, numFeatures int) ([]stream.RawStream, error) {
	present := buildPresent(col.IndexMap, numFeatures)
	streams := []stream.RawStream{encodePresentStream(present)}

	offsetMeta, lengthMeta, offsetPayload, lengthPayload, data, err := encoding.EncodeStringColumnPlain(col.Strings)
	if err != nil {
		return nil, err
	}
	offsetMeta.PhysicalStreamType = stream.Offset
	offsetMeta.LogicalStreamType = uint8(stream.OffsetString)
	lengthMeta.PhysicalStreamType = stream.Length
	lengthMeta.LogicalStreamType = uint8(stream.LengthVarBinary)
	dataMeta := stream.Metadata{
		PhysicalStreamType: stream.Data,
		LogicalStreamType:  uint8(stream.DictNone),
		NumValues:          uint32(len(data)), //nolint:gosec
		ByteLength:         uint32(len(data)), //nolint:gosec
	}

	streams = append(streams,
		stream.RawStream{Meta: offsetMeta, Payload: offsetPayload},
		stream.RawStream{Meta: lengthMeta, Payload: lengthPayload},
		stream.RawStream{Meta: dataMeta, Payload: data},
	)

	return streams, nil
}

// EncodeColumn dispatches to EncodeScalarColumn or EncodeStringColumnProperty
// based on col.Type.
func EncodeColumn(col *PropertyColumn, numFeatures int, opts encoding.EncodeOptions) ([]stream.RawStream, error) {
	if col.Type == metadata.String {
		return EncodeStringColumnProperty(col, numFeatures)
	}

	return EncodeScalarColumn(col, numFeatures, opts)
}
