package tile

import (
	"fmt"

	"github.com/maplibre/mlt-go/column"
	"github.com/maplibre/mlt-go/encoding"
	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/geometry"
	"github.com/maplibre/mlt-go/internal/bitutil"
	"github.com/maplibre/mlt-go/metadata"
	"github.com/maplibre/mlt-go/stream"
)

const currentVersion = 1

// Feature is one decoded row of a layer: an optional id, its owned geometry,
// and the logical row index used to look properties up in the layer's
// PropertyColumns (§3 "Feature").
type Feature struct {
	ID       uint64
	HasID    bool
	Geometry geometry.Geometry
	Index    int
}

// Layer is one decoded tile layer (§3 "Layer"): a name, its tile extent, the
// features in encoding order, and the full property columns (not exploded
// per feature).
type Layer struct {
	Name       string
	Version    uint8
	Extent     uint32
	MaxExtent  uint32
	Features   []Feature
	Properties map[string]*column.PropertyColumn
}

// Tile is the decoded result of Decode: an ordered sequence of Layers.
type Tile struct {
	Layers []Layer
}

// DecodeLayer decodes one layer record (§4.8) given its byte slice (the
// bytes inside one length-prefixed layer, layer_byte_length already
// consumed by the caller) and the tileset metadata it references.
func DecodeLayer(data []byte, meta metadata.TileSetMetadata) (Layer, error) {
	b := NewBufferStream(data)

	version, err := b.ReadByte()
	if err != nil {
		return Layer{}, err
	}

	featureTableID, err := b.ReadVarint32()
	if err != nil {
		return Layer{}, err
	}
	tileExtent, err := b.ReadVarint32()
	if err != nil {
		return Layer{}, err
	}
	if tileExtent == 0 {
		return Layer{}, fmt.Errorf("%w: tile_extent must be nonzero", errs.ErrMetadataMismatch)
	}
	maxTileExtent, err := b.ReadVarint32()
	if err != nil {
		return Layer{}, err
	}
	numFeatures, err := b.ReadVarint32()
	if err != nil {
		return Layer{}, err
	}

	table, err := meta.FeatureTableByID(int(featureTableID))
	if err != nil {
		return Layer{}, err
	}

	layer := Layer{
		Name:       table.Name,
		Version:    version,
		Extent:     tileExtent,
		MaxExtent:  maxTileExtent,
		Properties: make(map[string]*column.PropertyColumn, len(table.Columns)),
	}

	var (
		ids            []uint64
		hasIDs         bool
		idIndexMap     []int32
		geometries     []geometry.Geometry
	)

	for _, col := range table.Columns {
		numStreams, err := b.ReadVarint32()
		if err != nil {
			return Layer{}, err
		}

		switch col.Name {
		case "id":
			streams, next, err := stream.ReadStreams(data, b.Pos(), int(numStreams))
			if err != nil {
				return Layer{}, err
			}
			advance(b, next)

			decoded, indexMap, err := decodeIDColumn(streams, col.ScalarType, int(numFeatures))
			if err != nil {
				return Layer{}, err
			}
			ids = decoded
			idIndexMap = indexMap
			hasIDs = true

		case "geometry":
			streams, next, err := stream.ReadStreams(data, b.Pos(), int(numStreams))
			if err != nil {
				return Layer{}, err
			}
			advance(b, next)

			geomCol, err := geometry.DecodeGeometryColumn(streams)
			if err != nil {
				return Layer{}, err
			}
			geometries = geomCol.Geometries

		default:
			streams, next, err := stream.ReadStreams(data, b.Pos(), int(numStreams))
			if err != nil {
				return Layer{}, err
			}
			advance(b, next)

			propCol, err := column.DecodeColumn(streams, col.ScalarType, int(numFeatures))
			if err != nil {
				return Layer{}, err
			}
			layer.Properties[col.Name] = propCol
		}
	}

	if int(numFeatures) != len(geometries) {
		return Layer{}, fmt.Errorf("%w: numFeatures=%d geometries=%d", errs.ErrCountMismatch, numFeatures, len(geometries))
	}
	if hasIDs && int(numFeatures) != len(idIndexMapOrFull(idIndexMap, int(numFeatures))) {
		return Layer{}, fmt.Errorf("%w: numFeatures=%d ids=%d", errs.ErrCountMismatch, numFeatures, len(idIndexMapOrFull(idIndexMap, int(numFeatures))))
	}

	features := make([]Feature, numFeatures)
	for i := range features {
		f := Feature{Geometry: geometries[i], Index: i}
		if hasIDs {
			if idIndexMap == nil {
				f.ID = ids[i]
				f.HasID = true
			} else if idx := idIndexMap[i]; idx != column.AbsentIndex {
				f.ID = ids[idx]
				f.HasID = true
			}
		}
		features[i] = f
	}
	layer.Features = features

	if b.Remaining() != 0 {
		return Layer{}, fmt.Errorf("%w: %d bytes left unread in layer", errs.ErrTrailingBytes, b.Remaining())
	}

	return layer, nil
}

// idIndexMapOrFull returns indexMap, or a synthetic full-coverage map of
// length n when indexMap is nil (no present bitmap on the id column), so a
// single length check covers both shapes.
func idIndexMapOrFull(indexMap []int32, n int) []int32 {
	if indexMap != nil {
		return indexMap
	}
	full := make([]int32, n)
	for i := range full {
		full[i] = int32(i)
	}

	return full
}

// decodeIDColumn decodes the "id" column's optional present stream
// (discarded, re-derived as an index map) and its u32/u64 data stream
// (§4.8 step 3).
func decodeIDColumn(streams []stream.RawStream, scalarType metadata.ScalarType, numFeatures int) ([]uint64, []int32, error) {
	if len(streams) == 0 {
		return nil, nil, fmt.Errorf("%w: id column has no streams", errs.ErrUnsupportedEncoding)
	}

	dataIdx := 0
	var indexMap []int32
	if len(streams) > 1 {
		bits, err := encoding.DecodeBoolStream(streams[0].Payload, numFeatures)
		if err != nil {
			return nil, nil, err
		}
		writer := bitutil.NewBitsetWriter(numFeatures)
		for i, v := range bits {
			writer.Set(i, v)
		}
		present := bitutil.NewPackedBitset(writer.Bytes(), numFeatures)
		indexMap = make([]int32, numFeatures)
		physical := int32(0)
		for i := 0; i < numFeatures; i++ {
			if present.Test(i) {
				indexMap[i] = physical
				physical++
			} else {
				indexMap[i] = column.AbsentIndex
			}
		}
		dataIdx = 1
	}

	dataStream := streams[dataIdx]
	values, err := encoding.DecodeIntStream(dataStream.Meta, dataStream.Payload, false)
	if err != nil {
		return nil, nil, err
	}

	switch scalarType {
	case metadata.UInt32, metadata.UInt64:
	default:
		return nil, nil, fmt.Errorf("%w: id column scalar type %s", errs.ErrMetadataMismatch, scalarType)
	}

	ids := make([]uint64, len(values))
	for i, v := range values {
		ids[i] = uint64(v) //nolint:gosec
	}

	return ids, indexMap, nil
}

// advance seeks b forward to absolute offset next; used after the package
// reads a run of streams directly via stream.ReadStreams (which works on
// the raw byte slice rather than through BufferStream).
func advance(b *BufferStream, next int) {
	b.pos = next
}
