// Package geometry reconstructs the Point/LineString/Polygon tree (and its
// Multi- variants) from a geometry column's type-tag stream, nested length
// streams, and vertex buffer (§4.5), and performs the reverse for encoding.
package geometry

import "fmt"

// GeometryType is the wire ordinal carried by a geometry column's type-tag
// stream.
type GeometryType uint8

const (
	Point GeometryType = 0
	LineString GeometryType = 1
	Polygon GeometryType = 2
	MultiPoint GeometryType = 3
	MultiLineString GeometryType = 4
	MultiPolygon GeometryType = 5
)

func (t GeometryType) String() string {
	switch t {
	case Point:
		return "Point"
	case LineString:
		return "LineString"
	case Polygon:
		return "Polygon"
	case MultiPoint:
		return "MultiPoint"
	case MultiLineString:
		return "MultiLineString"
	case MultiPolygon:
		return "MultiPolygon"
	default:
		return fmt.Sprintf("GeometryType(%d)", uint8(t))
	}
}

// IsMulti reports whether t consumes the root LENGTH/GEOMETRIES stream.
func (t GeometryType) IsMulti() bool {
	return t == MultiPoint || t == MultiLineString || t == MultiPolygon
}

// IsPolygonFamily reports whether t is Polygon or MultiPolygon.
func (t GeometryType) IsPolygonFamily() bool {
	return t == Polygon || t == MultiPolygon
}

// IsLineFamily reports whether t is LineString or MultiLineString.
func (t GeometryType) IsLineFamily() bool {
	return t == LineString || t == MultiLineString
}

// Coord is a single 2-D tile-local integer coordinate.
type Coord struct {
	X, Y int32
}

// Ring is a closed or unclosed sequence of coordinates; Polygon rings are
// closed during decode if they weren't already.
type Ring []Coord

// Geometry is a tagged union over the six shapes a feature's geometry
// column can hold; there is no separate LinearRing shape. Only the field(s)
// matching Type are populated.
type Geometry struct {
	Type GeometryType

	// Point / MultiPoint.
	Points []Coord

	// LineString (len 1) / MultiLineString (len N).
	Lines []Ring

	// Polygon (len 1, rings[0] is the shell) / MultiPolygon (len N, one
	// ring-set per polygon, rings[0] of each set is its shell).
	Polygons [][]Ring
}

// NewPoint builds a Point geometry.
func NewPoint(c Coord) Geometry {
	return Geometry{Type: Point, Points: []Coord{c}}
}

// NewMultiPoint builds a MultiPoint geometry.
func NewMultiPoint(pts []Coord) Geometry {
	return Geometry{Type: MultiPoint, Points: pts}
}

// NewLineString builds a LineString geometry.
func NewLineString(line Ring) Geometry {
	return Geometry{Type: LineString, Lines: []Ring{line}}
}

// NewMultiLineString builds a MultiLineString geometry.
func NewMultiLineString(lines []Ring) Geometry {
	return Geometry{Type: MultiLineString, Lines: lines}
}

// NewPolygon builds a Polygon geometry; rings[0] is the shell.
func NewPolygon(rings []Ring) Geometry {
	return Geometry{Type: Polygon, Polygons: [][]Ring{rings}}
}

// NewMultiPolygon builds a MultiPolygon geometry.
func NewMultiPolygon(polygons [][]Ring) Geometry {
	return Geometry{Type: MultiPolygon, Polygons: polygons}
}

// closeRing appends the first coordinate if the ring is not already closed.
func closeRing(r Ring) Ring {
	if len(r) == 0 {
		return r
	}
	if r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}

	return r
}
