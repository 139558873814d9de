package geometry

import (
	"testing"

	"github.com/maplibre/mlt-go/encoding"
	"github.com/maplibre/mlt-go/stream"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, geometries []Geometry) []Geometry {
	t.Helper()

	streams, err := EncodeGeometryColumn(geometries, encoding.EncodeOptions{})
	require.NoError(t, err)

	col, err := DecodeGeometryColumn(streams)
	require.NoError(t, err)

	return col.Geometries
}

func TestGeometryColumnRoundTripPoint(t *testing.T) {
	geoms := []Geometry{NewPoint(Coord{100, 200})}
	got := roundTrip(t, geoms)
	require.Equal(t, geoms, got)
}

func TestGeometryColumnRoundTripMultiPoint(t *testing.T) {
	geoms := []Geometry{NewMultiPoint([]Coord{{0, 0}, {10, 10}, {-5, 5}})}
	got := roundTrip(t, geoms)
	require.Equal(t, geoms, got)
}

func TestGeometryColumnRoundTripLineString(t *testing.T) {
	geoms := []Geometry{NewLineString(Ring{{0, 0}, {100, 100}, {200, 50}})}
	got := roundTrip(t, geoms)
	require.Equal(t, geoms, got)
}

func TestGeometryColumnRoundTripMultiLineString(t *testing.T) {
	geoms := []Geometry{NewMultiLineString([]Ring{
		{{0, 0}, {10, 10}},
		{{5, 5}, {6, 6}, {7, 7}},
	})}
	got := roundTrip(t, geoms)
	require.Equal(t, geoms, got)
}

func TestGeometryColumnRoundTripPolygonClosesRing(t *testing.T) {
	// Shell given unclosed; decode must close it.
	shell := Ring{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	geoms := []Geometry{NewPolygon([]Ring{shell})}

	got := roundTrip(t, geoms)
	require.Len(t, got, 1)
	require.Equal(t, Polygon, got[0].Type)
	closedShell := got[0].Polygons[0][0]
	require.Len(t, closedShell, 5)
	require.Equal(t, closedShell[0], closedShell[len(closedShell)-1])
	require.Equal(t, shell, closedShell[:4])
}

func TestGeometryColumnRoundTripPolygonWithHole(t *testing.T) {
	shell := Ring{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}}
	hole := Ring{{10, 10}, {20, 10}, {20, 20}, {10, 20}, {10, 10}}
	geoms := []Geometry{NewPolygon([]Ring{shell, hole})}

	got := roundTrip(t, geoms)
	require.Equal(t, geoms, got)
}

func TestGeometryColumnRoundTripMultiPolygon(t *testing.T) {
	poly1 := []Ring{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	poly2 := []Ring{
		{{100, 100}, {200, 100}, {200, 200}, {100, 200}, {100, 100}},
		{{110, 110}, {120, 110}, {120, 120}, {110, 120}, {110, 110}},
	}
	geoms := []Geometry{NewMultiPolygon([][]Ring{poly1, poly2})}

	got := roundTrip(t, geoms)
	require.Equal(t, geoms, got)
}

func TestGeometryColumnRoundTripMixedColumn(t *testing.T) {
	geoms := []Geometry{
		NewPoint(Coord{1, 2}),
		NewLineString(Ring{{0, 0}, {5, 5}, {10, 0}}),
		NewPolygon([]Ring{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}),
		NewMultiPoint([]Coord{{1, 1}, {2, 2}}),
		NewMultiLineString([]Ring{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}, {4, 4}}}),
		NewMultiPolygon([][]Ring{
			{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
		}),
	}

	got := roundTrip(t, geoms)
	require.Equal(t, geoms, got)
}

func TestGeometryColumnTypeCountInvariant(t *testing.T) {
	geoms := []Geometry{NewPoint(Coord{1, 1}), NewPoint(Coord{2, 2}), NewPoint(Coord{3, 3})}

	streams, err := EncodeGeometryColumn(geoms, encoding.EncodeOptions{})
	require.NoError(t, err)

	col, err := DecodeGeometryColumn(streams)
	require.NoError(t, err)
	require.Len(t, col.Geometries, len(geoms))
	require.Equal(t, []int64{0, 1, 2, 3}, col.GeometryOffsets)
}

func TestGeometryTypeString(t *testing.T) {
	require.Equal(t, "Polygon", Polygon.String())
	require.Equal(t, "MultiPolygon", MultiPolygon.String())
	require.Contains(t, GeometryType(99).String(), "99")
}

func TestDecodeGeometryColumnRejectsEmptyStreams(t *testing.T) {
	_, err := DecodeGeometryColumn(nil)
	require.Error(t, err)
}

func TestVertexDictionaryRoundTrip(t *testing.T) {
	// Build a column by hand with a vertex dictionary: two occurrences
	// sharing one pooled vertex.
	pool := []int64{10, 20, 30, 40}
	poolMeta, poolPayload, err := encoding.EncodeComponentwiseDeltaStream(pool, encoding.EncodeOptions{})
	require.NoError(t, err)
	poolMeta.PhysicalStreamType = stream.Data
	poolMeta.LogicalStreamType = uint8(stream.DictVertex)

	offsets := []int64{0, 1, 0}
	offsetMeta, offsetPayload, err := encoding.EncodeIntStream(offsets, false, encoding.EncodeOptions{})
	require.NoError(t, err)
	offsetMeta.PhysicalStreamType = stream.Offset
	offsetMeta.LogicalStreamType = uint8(stream.OffsetVertex)

	types := []int64{int64(Point), int64(Point), int64(Point)}
	typeMeta, typePayload, err := encoding.EncodeIntStream(types, false, encoding.EncodeOptions{})
	require.NoError(t, err)

	streams := []stream.RawStream{
		{Meta: typeMeta, Payload: typePayload},
		{Meta: poolMeta, Payload: poolPayload},
		{Meta: offsetMeta, Payload: offsetPayload},
	}

	col, err := DecodeGeometryColumn(streams)
	require.NoError(t, err)
	require.Equal(t, []Geometry{
		NewPoint(Coord{10, 20}),
		NewPoint(Coord{30, 40}),
		NewPoint(Coord{10, 20}),
	}, col.Geometries)
}
