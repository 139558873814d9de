package tile

import (
	"fmt"

	"github.com/maplibre/mlt-go/column"
	"github.com/maplibre/mlt-go/encoding"
	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/geometry"
	"github.com/maplibre/mlt-go/internal/bitutil"
	"github.com/maplibre/mlt-go/internal/pool"
	"github.com/maplibre/mlt-go/metadata"
	"github.com/maplibre/mlt-go/stream"
)

// EncodeLayer encodes layer against table's declared column order, mirroring
// DecodeLayer's dispatch (§4.8 "Encoding mirrors this"). The caller supplies
// the raw geometries and optional ids (by feature index) since Layer itself
// retains only the assembled Feature/PropertyColumn view, plus
// featureTableID, the index into the tileset metadata table describes.
func EncodeLayer(layer Layer, table metadata.FeatureTable, featureTableID int, ids []uint64, hasID []bool, geometries []geometry.Geometry, opts encoding.EncodeOptions) ([]byte, error) {
	var buf []byte
	buf = append(buf, layer.Version)
	buf = bitutil.AppendVarint32(buf, uint32(featureTableID)) //nolint:gosec
	buf = bitutil.AppendVarint32(buf, layer.Extent)
	buf = bitutil.AppendVarint32(buf, layer.MaxExtent)
	buf = bitutil.AppendVarint32(buf, uint32(len(geometries))) //nolint:gosec

	for _, col := range table.Columns {
		var (
			streams []stream.RawStream
			err     error
		)

		switch col.Name {
		case "id":
			streams, err = encodeIDColumn(ids, hasID, col.ScalarType, opts)
		case "geometry":
			streams, err = geometry.EncodeGeometryColumn(geometries, opts)
		default:
			propCol, ok := layer.Properties[col.Name]
			if !ok {
				return nil, fmt.Errorf("%w: layer missing declared column %q", errs.ErrMetadataMismatch, col.Name)
			}
			streams, err = column.EncodeColumn(propCol, len(geometries), opts)
		}
		if err != nil {
			return nil, err
		}

		buf = bitutil.AppendVarint32(buf, uint32(len(streams)))
		for _, s := range streams {
			buf = stream.Encode(buf, s.Meta)
			buf = append(buf, s.Payload...)
		}
	}

	return buf, nil
}

func encodeIDColumn(ids []uint64, hasID []bool, scalarType metadata.ScalarType, opts encoding.EncodeOptions) ([]stream.RawStream, error) {
	allPresent := true
	for _, v := range hasID {
		if !v {
			allPresent = false

			break
		}
	}

	var streams []stream.RawStream
	var physical []uint64
	if allPresent {
		physical = ids
	} else {
		payload := encoding.EncodeBoolStream(hasID)
		streams = append(streams, stream.RawStream{
			Meta: stream.Metadata{
				PhysicalStreamType: stream.Present,
				NumValues:          uint32(len(hasID)), //nolint:gosec
				ByteLength:         uint32(len(payload)), //nolint:gosec
			},
			Payload: payload,
		})
		for i, v := range hasID {
			if v {
				physical = append(physical, ids[i])
			}
		}
	}

	// The widened int64 view of physical is pure scratch: EncodeIntStream
	// consumes it synchronously, so it comes from the shared slice pool
	// instead of a fresh allocation per layer.
	values, done := pool.GetInt64Slice(len(physical))
	defer done()
	for i, v := range physical {
		values[i] = int64(v) //nolint:gosec
	}

	meta, payload, err := encoding.EncodeIntStream(values, false, opts)
	if err != nil {
		return nil, err
	}
	meta.PhysicalStreamType = stream.Data
	streams = append(streams, stream.RawStream{Meta: meta, Payload: payload})

	switch scalarType {
	case metadata.UInt32, metadata.UInt64:
	default:
		return nil, fmt.Errorf("%w: id column scalar type %s", errs.ErrMetadataMismatch, scalarType)
	}

	return streams, nil
}
