// Package column assembles PropertyColumn values from a feature table's
// decoded wire streams (§4.7): a column is a scalar or string array plus an
// optional present bitmap mapping logical feature index to physical value
// index.
package column

import (
	"fmt"

	"github.com/maplibre/mlt-go/encoding"
	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/internal/bitutil"
	"github.com/maplibre/mlt-go/metadata"
	"github.com/maplibre/mlt-go/stream"
)

// AbsentIndex is the IndexMap sentinel marking a logical row with no value.
const AbsentIndex = -1

// PropertyColumn is one decoded property column: {scalar_type, values,
// optional present_bitmap, optional index_map} (§3 "PropertyColumn").
//
// Exactly one of the typed value slices is populated, selected by Type.
// When Present is nil, logical index == physical index and the populated
// slice has length NumFeatures. When Present is non-nil, the populated
// slice has length Present.Popcount() and IndexMap translates a logical row
// to its physical slot, or AbsentIndex if the row's bit is unset.
type PropertyColumn struct {
	Type    metadata.ScalarType
	Present *bitutil.PackedBitset
	IndexMap []int32

	Bools    []bool
	Int32s   []int32
	UInt32s  []uint32
	Int64s   []int64
	UInt64s  []uint64
	Float32s []float32
	Float64s []float64
	Strings  []string
}

// Len returns the number of logical (feature) rows this column covers.
func (c *PropertyColumn) Len() int {
	if c.IndexMap != nil {
		return len(c.IndexMap)
	}

	switch c.Type {
	case metadata.Bool:
		return len(c.Bools)
	case metadata.Int32:
		return len(c.Int32s)
	case metadata.UInt32:
		return len(c.UInt32s)
	case metadata.Int64:
		return len(c.Int64s)
	case metadata.UInt64:
		return len(c.UInt64s)
	case metadata.Float32:
		return len(c.Float32s)
	case metadata.Float64:
		return len(c.Float64s)
	case metadata.String:
		return len(c.Strings)
	default:
		return 0
	}
}

// IsNull reports whether logical row i has no value.
func (c *PropertyColumn) IsNull(i int) bool {
	if c.IndexMap == nil {
		return false
	}

	return c.IndexMap[i] == AbsentIndex
}

// physicalIndex translates a logical row to its physical slot, reporting ok
// = false for a null row.
func (c *PropertyColumn) physicalIndex(i int) (int, bool) {
	if c.IndexMap == nil {
		return i, true
	}
	idx := c.IndexMap[i]
	if idx == AbsentIndex {
		return 0, false
	}

	return int(idx), true
}

// StringAt returns logical row i's string value, or ok = false if null.
// Only meaningful when Type == metadata.String.
func (c *PropertyColumn) StringAt(i int) (string, bool) {
	idx, ok := c.physicalIndex(i)
	if !ok {
		return "", false
	}

	return c.Strings[idx], true
}

// Int64At returns logical row i's value widened to int64, or ok = false if
// null. Meaningful for any integer Type.
func (c *PropertyColumn) Int64At(i int) (int64, bool) {
	idx, ok := c.physicalIndex(i)
	if !ok {
		return 0, false
	}

	switch c.Type {
	case metadata.Int32:
		return int64(c.Int32s[idx]), true
	case metadata.UInt32:
		return int64(c.UInt32s[idx]), true
	case metadata.Int64:
		return c.Int64s[idx], true
	case metadata.UInt64:
		return int64(c.UInt64s[idx]), true //nolint:gosec
	default:
		return 0, false
	}
}

// buildIndexMap expands a present bitset of numFeatures logical bits into a
// logical->physical index map, the shape every decoded optional-present
// column carries (§3 PropertyColumn invariants).
func buildIndexMap(present bitutil.PackedBitset) []int32 {
	indexMap := make([]int32, present.Len())
	physical := int32(0)
	for i := range indexMap {
		if present.Test(i) {
			indexMap[i] = physical
			physical++
		} else {
			indexMap[i] = AbsentIndex
		}
	}

	return indexMap
}

// decodePresentStream decodes a PRESENT stream's byte-RLE packed bitmap.
func decodePresentStream(s stream.RawStream, numFeatures int) (bitutil.PackedBitset, error) {
	bits, err := encoding.DecodeBoolStream(s.Payload, numFeatures)
	if err != nil {
		return bitutil.PackedBitset{}, err
	}

	writer := bitutil.NewBitsetWriter(numFeatures)
	for i, b := range bits {
		writer.Set(i, b)
	}

	return bitutil.NewPackedBitset(writer.Bytes(), numFeatures), nil
}

// DecodeScalarColumn decodes a bool/int/float column's streams (§4.7): an
// optional PRESENT stream when len(streams) > 1, followed by the data
// stream.
func DecodeScalarColumn(streams []stream.RawStream, kind metadata.ScalarType, numFeatures int) (*PropertyColumn, error) {
	if len(streams) == 0 {
		return nil, fmt.Errorf("%w: scalar column has no streams", errs.ErrUnsupportedEncoding)
	}

	dataIdx := 0
	col := &PropertyColumn{Type: kind}

	if len(streams) > 1 {
		present, err := decodePresentStream(streams[0], numFeatures)
		if err != nil {
			return nil, err
		}
		col.Present = &present
		col.IndexMap = buildIndexMap(present)
		dataIdx = 1
	}

	dataStream := streams[dataIdx]
	physicalCount := int(dataStream.Meta.NumValues)

	switch kind {
	case metadata.Bool:
		values, err := encoding.DecodeBoolStream(dataStream.Payload, physicalCount)
		if err != nil {
			return nil, err
		}
		col.Bools = values
	case metadata.Int32, metadata.UInt32:
		values, err := encoding.DecodeIntStream(dataStream.Meta, dataStream.Payload, kind == metadata.Int32)
		if err != nil {
			return nil, err
		}
		if kind == metadata.Int32 {
			col.Int32s = toInt32s(values)
		} else {
			col.UInt32s = toUInt32s(values)
		}
	case metadata.Int64, metadata.UInt64:
		values, err := encoding.DecodeIntStream(dataStream.Meta, dataStream.Payload, kind == metadata.Int64)
		if err != nil {
			return nil, err
		}
		if kind == metadata.Int64 {
			col.Int64s = values
		} else {
			col.UInt64s = toUInt64s(values)
		}
	case metadata.Float32:
		values, err := encoding.DecodeFloat32Stream(dataStream.Payload, physicalCount)
		if err != nil {
			return nil, err
		}
		col.Float32s = values
	case metadata.Float64:
		values, err := encoding.DecodeFloat64Stream(dataStream.Payload, physicalCount)
		if err != nil {
			return nil, err
		}
		col.Float64s = values
	default:
		return nil, fmt.Errorf("%w: scalar column type %s", errs.ErrMetadataMismatch, kind)
	}

	return col, nil
}

// DecodeStringColumnProperty decodes a string column's streams (§4.6):
// always a leading PRESENT stream, delegated to encoding.DecodeStringColumn
// for the rest.
func DecodeStringColumnProperty(streams []stream.RawStream, numFeatures int) (*PropertyColumn, error) {
	if len(streams) < 2 {
		return nil, fmt.Errorf("%w: string column must carry a PRESENT stream", errs.ErrUnsupportedEncoding)
	}

	present, err := decodePresentStream(streams[0], numFeatures)
	if err != nil {
		return nil, err
	}

	values, err := encoding.DecodeStringColumn(streams[1:])
	if err != nil {
		return nil, err
	}

	return &PropertyColumn{
		Type:     metadata.String,
		Present:  &present,
		IndexMap: buildIndexMap(present),
		Strings:  values,
	}, nil
}

// DecodeColumn dispatches to DecodeScalarColumn or DecodeStringColumnProperty
// based on kind, the single entry point the tile/layer driver calls per
// declared column (§4.7).
func DecodeColumn(streams []stream.RawStream, kind metadata.ScalarType, numFeatures int) (*PropertyColumn, error) {
	if kind == metadata.String {
		return DecodeStringColumnProperty(streams, numFeatures)
	}

	return DecodeScalarColumn(streams, kind, numFeatures)
}

func toInt32s(values []int64) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = int32(v) //nolint:gosec
	}

	return out
}

func toUInt32s(values []int64) []uint32 {
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(v) //nolint:gosec
	}

	return out
}

func toUInt64s(values []int64) []uint64 {
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = uint64(v) //nolint:gosec
	}

	return out
}
