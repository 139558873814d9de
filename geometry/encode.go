package geometry

import (
	"github.com/maplibre/mlt-go/encoding"
	"github.com/maplibre/mlt-go/stream"
)

// EncodeGeometryColumn encodes a slice of Geometry values into the wire
// streams of a geometry column (§4.5 "Assembly"): a type-tag stream, the
// three nested length streams (each omitted when empty for this column),
// and a single componentwise-delta-coded vertex stream. No vertex
// dictionary is produced, matching the reference encoder's policy.
func EncodeGeometryColumn(geometries []Geometry, opts encoding.EncodeOptions) ([]stream.RawStream, error) {
	types := make([]int64, len(geometries))
	var geometriesLen, partsLen, ringsLen []int64
	var vertices []int64

	hasPolygon := false
	for _, g := range geometries {
		if g.Type.IsPolygonFamily() {
			hasPolygon = true

			break
		}
	}

	appendVertex := func(c Coord) {
		vertices = append(vertices, int64(c.X), int64(c.Y))
	}
	appendLineLen := func(n int64) {
		if hasPolygon {
			ringsLen = append(ringsLen, n)
		} else {
			partsLen = append(partsLen, n)
		}
	}

	for i, g := range geometries {
		types[i] = int64(g.Type)

		switch g.Type {
		case Point:
			appendVertex(g.Points[0])

		case MultiPoint:
			geometriesLen = append(geometriesLen, int64(len(g.Points)))
			for _, c := range g.Points {
				appendVertex(c)
			}

		case LineString:
			line := g.Lines[0]
			appendLineLen(int64(len(line)))
			for _, c := range line {
				appendVertex(c)
			}

		case MultiLineString:
			geometriesLen = append(geometriesLen, int64(len(g.Lines)))
			for _, line := range g.Lines {
				appendLineLen(int64(len(line)))
				for _, c := range line {
					appendVertex(c)
				}
			}

		case Polygon:
			rings := g.Polygons[0]
			partsLen = append(partsLen, int64(len(rings)))
			for _, ring := range rings {
				ringsLen = append(ringsLen, int64(len(ring)))
				for _, c := range ring {
					appendVertex(c)
				}
			}

		case MultiPolygon:
			geometriesLen = append(geometriesLen, int64(len(g.Polygons)))
			for _, rings := range g.Polygons {
				partsLen = append(partsLen, int64(len(rings)))
				for _, ring := range rings {
					ringsLen = append(ringsLen, int64(len(ring)))
					for _, c := range ring {
						appendVertex(c)
					}
				}
			}
		}
	}

	var streams []stream.RawStream

	typeMeta, typePayload, err := encoding.EncodeIntStream(types, false, opts)
	if err != nil {
		return nil, err
	}
	streams = append(streams, stream.RawStream{Meta: typeMeta, Payload: typePayload})

	if len(geometriesLen) > 0 {
		meta, payload, err := encoding.EncodeIntStream(geometriesLen, false, opts)
		if err != nil {
			return nil, err
		}
		meta.PhysicalStreamType = stream.Length
		meta.LogicalStreamType = uint8(stream.LengthGeometries)
		streams = append(streams, stream.RawStream{Meta: meta, Payload: payload})
	}

	if len(partsLen) > 0 {
		meta, payload, err := encoding.EncodeIntStream(partsLen, false, opts)
		if err != nil {
			return nil, err
		}
		meta.PhysicalStreamType = stream.Length
		meta.LogicalStreamType = uint8(stream.LengthParts)
		streams = append(streams, stream.RawStream{Meta: meta, Payload: payload})
	}

	if len(ringsLen) > 0 {
		meta, payload, err := encoding.EncodeIntStream(ringsLen, false, opts)
		if err != nil {
			return nil, err
		}
		meta.PhysicalStreamType = stream.Length
		meta.LogicalStreamType = uint8(stream.LengthRings)
		streams = append(streams, stream.RawStream{Meta: meta, Payload: payload})
	}

	vertexMeta, vertexPayload, err := encodeVertexStream(vertices)
	if err != nil {
		return nil, err
	}
	streams = append(streams, stream.RawStream{Meta: vertexMeta, Payload: vertexPayload})

	return streams, nil
}

// encodeVertexStream componentwise-delta-codes an interleaved (x, y) vertex
// sequence and wraps the result as a DATA/NONE stream (no dictionary).
func encodeVertexStream(vertices []int64) (stream.Metadata, []byte, error) {
	meta, payload, err := encoding.EncodeComponentwiseDeltaStream(vertices, encoding.EncodeOptions{})
	if err != nil {
		return stream.Metadata{}, nil, err
	}
	meta.PhysicalStreamType = stream.Data
	meta.LogicalStreamType = uint8(stream.DictNone)

	return meta, payload, nil
}
