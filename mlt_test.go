package mlt

import (
	"testing"

	"github.com/maplibre/mlt-go/column"
	"github.com/maplibre/mlt-go/geometry"
	"github.com/maplibre/mlt-go/metadata"
	"github.com/stretchr/testify/require"
)

func roadsTable() metadata.FeatureTable {
	return metadata.FeatureTable{
		Name: "roads",
		Columns: []metadata.Column{
			{Name: "id", ScalarType: metadata.UInt64},
			{Name: "geometry", IsComplex: true, Complex: metadata.Geometry},
			{Name: "name", ScalarType: metadata.String, Nullable: true},
		},
	}
}

func TestDecodeEncodeTileRoundTrip(t *testing.T) {
	table := roadsTable()
	meta := metadata.TileSetMetadata{FeatureTables: []metadata.FeatureTable{table}}

	geometries := []geometry.Geometry{
		geometry.NewPoint(geometry.Coord{1, 1}),
		geometry.NewPoint(geometry.Coord{2, 2}),
	}
	layer := tileLayer(table, geometries)

	input := []LayerInput{{
		Layer:          layer,
		Table:          table,
		FeatureTableID: 0,
		Geometries:     geometries,
		IDs:            []uint64{100, 200},
		HasID:          []bool{true, true},
	}}

	encoded, err := Encode(input, WithFastPFOR(false), WithIncludeIDs(true))
	require.NoError(t, err)

	got, err := Decode(encoded, meta)
	require.NoError(t, err)
	require.Len(t, got.Layers, 1)
	require.Equal(t, "roads", got.Layers[0].Name)
	require.Len(t, got.Layers[0].Features, 2)
	require.True(t, got.Layers[0].Features[0].HasID)
	require.Equal(t, uint64(100), got.Layers[0].Features[0].ID)
	require.Equal(t, geometries[1], got.Layers[0].Features[1].Geometry)

	name, ok := got.Layers[0].Properties["name"].StringAt(0)
	require.True(t, ok)
	require.Equal(t, "first", name)
}

func TestEncodeWithoutIDsOmitsIDs(t *testing.T) {
	table := roadsTable()
	meta := metadata.TileSetMetadata{FeatureTables: []metadata.FeatureTable{table}}

	geometries := []geometry.Geometry{geometry.NewPoint(geometry.Coord{5, 5})}
	layer := tileLayer(table, geometries)

	input := []LayerInput{{
		Layer:          layer,
		Table:          table,
		FeatureTableID: 0,
		Geometries:     geometries,
		IDs:            []uint64{42},
		HasID:          []bool{true},
	}}

	encoded, err := Encode(input, WithIncludeIDs(false))
	require.NoError(t, err)

	got, err := Decode(encoded, meta)
	require.NoError(t, err)
	require.False(t, got.Layers[0].Features[0].HasID)
}

func TestWithBigEndianUnsupported(t *testing.T) {
	_, err := Encode(nil, WithBigEndian())
	require.Error(t, err)
}

func tileLayer(table metadata.FeatureTable, geometries []geometry.Geometry) Layer {
	return Layer{
		Name:      table.Name,
		Version:   1,
		Extent:    4096,
		MaxExtent: 4096,
		Properties: map[string]*column.PropertyColumn{
			"name": {
				Type:    metadata.String,
				Strings: []string{"first", "second"}[:len(geometries)],
			},
		},
	}
}
