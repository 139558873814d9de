package geometry

import (
	"fmt"

	"github.com/maplibre/mlt-go/encoding"
	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/stream"
)

// GeometryColumn is the codec-internal intermediate shape a column's wire
// streams decode into before (or instead of) being walked into a Geometry
// tree (§3 "GeometryColumn").
type GeometryColumn struct {
	Types []GeometryType

	// Cumulative offset arrays; length = parent count + 1, GeometryOffsets[0] == 0.
	GeometryOffsets []int64
	PartOffsets     []int64
	RingOffsets     []int64

	// VertexOffsets indexes into Vertices when a vertex dictionary is present;
	// nil when vertices are consumed directly in occurrence order.
	VertexOffsets []int64
	Vertices      []int32 // interleaved (x, y), either the full occurrence sequence or a deduplicated pool

	// Tessellated ("flat GPU") geometry support: present only when the
	// column carries pre-triangulated output and no topology arrays.
	IndexBuffer []int64
	Triangles   []int64

	// Geometries holds the assembled tree, empty for a tessellated column.
	Geometries []Geometry
}

// IsTessellated reports whether this column is a flat GPU vector: an index
// buffer with no part-level topology (§4.5 "Tessellated geometries").
func (c *GeometryColumn) IsTessellated() bool {
	return len(c.IndexBuffer) > 0 && len(c.PartOffsets) == 0
}

// intCursor walks a decoded integer stream one value at a time, the shape
// every nested length buffer is consumed through during assembly.
type intCursor struct {
	values []int64
	pos    int
}

func (c *intCursor) next() (int64, error) {
	if c == nil || c.pos >= len(c.values) {
		return 0, fmt.Errorf("%w: length stream exhausted", errs.ErrGeometryError)
	}
	v := c.values[c.pos]
	c.pos++

	return v, nil
}

// DecodeGeometryColumn decodes one geometry column's streams (§4.5) into a
// GeometryColumn, walking the type-tag array to assemble the Geometry tree.
// streams holds every stream of the column, in wire order; the first is
// always the type-tag stream.
func DecodeGeometryColumn(streams []stream.RawStream) (*GeometryColumn, error) {
	if len(streams) == 0 {
		return nil, fmt.Errorf("%w: geometry column has no streams", errs.ErrGeometryError)
	}

	typeValues, err := encoding.DecodeIntStream(streams[0].Meta, streams[0].Payload, false)
	if err != nil {
		return nil, err
	}
	types := make([]GeometryType, len(typeValues))
	for i, v := range typeValues {
		if v > int64(MultiPolygon) {
			return nil, fmt.Errorf("%w: geometry type ordinal %d", errs.ErrInvalidEnum, v)
		}
		types[i] = GeometryType(v) //nolint:gosec
	}

	var (
		geometriesCur, partsCur, ringsCur, trianglesCur *intCursor
		vertexOffsets                                   []int64
		vertexPool                                       []int64
		indexBuffer                                     []int64
	)

	for _, s := range streams[1:] {
		switch s.Meta.PhysicalStreamType {
		case stream.Length:
			values, err := encoding.DecodeIntStream(s.Meta, s.Payload, false)
			if err != nil {
				return nil, err
			}
			switch s.Meta.LengthType() {
			case stream.LengthGeometries:
				geometriesCur = &intCursor{values: values}
			case stream.LengthParts:
				partsCur = &intCursor{values: values}
			case stream.LengthRings:
				ringsCur = &intCursor{values: values}
			case stream.LengthTriangles:
				trianglesCur = &intCursor{values: values}
			default:
				return nil, fmt.Errorf("%w: unexpected LENGTH subtype %s in geometry column", errs.ErrMetadataMismatch, s.Meta.LengthType())
			}
		case stream.Offset:
			values, err := encoding.DecodeIntStream(s.Meta, s.Payload, false)
			if err != nil {
				return nil, err
			}
			switch s.Meta.OffsetType() {
			case stream.OffsetVertex:
				vertexOffsets = values
			case stream.OffsetIndex:
				indexBuffer = values
			default:
				return nil, fmt.Errorf("%w: unexpected OFFSET subtype %s in geometry column", errs.ErrMetadataMismatch, s.Meta.OffsetType())
			}
		case stream.Data:
			values, err := encoding.DecodeIntStream(s.Meta, s.Payload, true)
			if err != nil {
				return nil, err
			}
			vertexPool = values
		default:
			return nil, fmt.Errorf("%w: unexpected stream role %s in geometry column", errs.ErrMetadataMismatch, s.Meta.PhysicalStreamType)
		}
	}

	resolved, err := resolveVertices(vertexPool, vertexOffsets)
	if err != nil {
		return nil, err
	}

	var triangles []int64
	if trianglesCur != nil {
		triangles = trianglesCur.values
	}

	col := &GeometryColumn{
		Types:         types,
		VertexOffsets: vertexOffsets,
		Vertices:      int64sToInt32s(vertexPool),
		IndexBuffer:   indexBuffer,
		Triangles:     triangles,
	}

	if len(indexBuffer) > 0 && partsCur == nil {
		return col, nil
	}

	col.GeometryOffsets = []int64{0}
	col.PartOffsets = []int64{0}
	col.RingOffsets = []int64{0}

	hasPolygon := false
	for _, t := range types {
		if t.IsPolygonFamily() {
			hasPolygon = true

			break
		}
	}

	vPos := 0
	nextVertex := func() (Coord, error) {
		if 2*vPos+1 >= len(resolved) {
			return Coord{}, fmt.Errorf("%w: vertex buffer exhausted", errs.ErrGeometryError)
		}
		c := Coord{X: int32(resolved[2*vPos]), Y: int32(resolved[2*vPos+1])} //nolint:gosec
		vPos++

		return c, nil
	}
	readRing := func(count int64) (Ring, error) {
		ring := make(Ring, count)
		for k := range ring {
			c, err := nextVertex()
			if err != nil {
				return nil, err
			}
			ring[k] = c
		}

		return ring, nil
	}
	appendGeom := func(n int64) {
		col.GeometryOffsets = append(col.GeometryOffsets, col.GeometryOffsets[len(col.GeometryOffsets)-1]+n)
	}
	appendPart := func(n int64) {
		col.PartOffsets = append(col.PartOffsets, col.PartOffsets[len(col.PartOffsets)-1]+n)
	}
	appendRing := func(n int64) {
		col.RingOffsets = append(col.RingOffsets, col.RingOffsets[len(col.RingOffsets)-1]+n)
	}
	// lineVertexCount reads a LineString/MultiLineString leaf's vertex count:
	// from RINGS when the column also carries polygons (they share the
	// per-leaf-vertex-count stream), otherwise from PARTS (§4.5 boundary
	// behavior).
	lineVertexCount := func() (int64, error) {
		if hasPolygon {
			return ringsCur.next()
		}

		return partsCur.next()
	}

	geometries := make([]Geometry, len(types))
	for i, t := range types {
		switch t {
		case Point:
			c, err := nextVertex()
			if err != nil {
				return nil, err
			}
			geometries[i] = NewPoint(c)
			appendGeom(1)

		case MultiPoint:
			n, err := geometriesCur.next()
			if err != nil {
				return nil, err
			}
			pts := make([]Coord, n)
			for k := range pts {
				c, err := nextVertex()
				if err != nil {
					return nil, err
				}
				pts[k] = c
			}
			geometries[i] = NewMultiPoint(pts)
			appendGeom(n)

		case LineString:
			vc, err := lineVertexCount()
			if err != nil {
				return nil, err
			}
			ring, err := readRing(vc)
			if err != nil {
				return nil, err
			}
			geometries[i] = NewLineString(ring)
			appendGeom(1)
			appendPart(1)
			appendRing(vc)

		case MultiLineString:
			n, err := geometriesCur.next()
			if err != nil {
				return nil, err
			}
			lines := make([]Ring, n)
			for li := range lines {
				vc, err := lineVertexCount()
				if err != nil {
					return nil, err
				}
				ring, err := readRing(vc)
				if err != nil {
					return nil, err
				}
				lines[li] = ring
				appendPart(1)
				appendRing(vc)
			}
			geometries[i] = NewMultiLineString(lines)
			appendGeom(n)

		case Polygon:
			numRings, err := partsCur.next()
			if err != nil {
				return nil, err
			}
			rings := make([]Ring, numRings)
			for ri := range rings {
				vc, err := ringsCur.next()
				if err != nil {
					return nil, err
				}
				ring, err := readRing(vc)
				if err != nil {
					return nil, err
				}
				rings[ri] = closeRing(ring)
				appendRing(vc)
			}
			geometries[i] = NewPolygon(rings)
			appendGeom(1)
			appendPart(numRings)

		case MultiPolygon:
			numPolys, err := geometriesCur.next()
			if err != nil {
				return nil, err
			}
			polys := make([][]Ring, numPolys)
			var totalRings int64
			for pi := range polys {
				numRings, err := partsCur.next()
				if err != nil {
					return nil, err
				}
				rings := make([]Ring, numRings)
				for ri := range rings {
					vc, err := ringsCur.next()
					if err != nil {
						return nil, err
					}
					ring, err := readRing(vc)
					if err != nil {
						return nil, err
					}
					rings[ri] = closeRing(ring)
					appendRing(vc)
				}
				polys[pi] = rings
				totalRings += numRings
			}
			geometries[i] = NewMultiPolygon(polys)
			appendGeom(numPolys)
			appendPart(totalRings)

		default:
			return nil, fmt.Errorf("%w: geometry type %s", errs.ErrInvalidEnum, t)
		}
	}

	if 2*vPos != len(resolved) {
		return nil, fmt.Errorf("%w: decoded %d vertices, column carried %d", errs.ErrGeometryError, vPos, len(resolved)/2)
	}

	col.Geometries = geometries

	return col, nil
}

// resolveVertices expands the per-occurrence coordinate sequence: directly
// from pool when no dictionary is present, or via offsets into pool
// (2*offsets[i], 2*offsets[i]+1) when a vertex dictionary is used.
func resolveVertices(pool []int64, offsets []int64) ([]int64, error) {
	if offsets == nil {
		return pool, nil
	}

	out := make([]int64, 2*len(offsets))
	for i, idx := range offsets {
		if idx < 0 || 2*idx+1 >= int64(len(pool)) {
			return nil, fmt.Errorf("%w: vertex dictionary index %d out of range", errs.ErrGeometryError, idx)
		}
		out[2*i] = pool[2*idx]
		out[2*i+1] = pool[2*idx+1]
	}

	return out, nil
}

func int64sToInt32s(values []int64) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = int32(v) //nolint:gosec
	}

	return out
}
