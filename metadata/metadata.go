// Package metadata holds the in-memory tileset metadata shape the core
// codec consumes (§6.2): per-layer feature table schemas that declare each
// column's name, nullability, scope, and type. Wire (de)serialization of
// this structure is out of scope; callers construct it however they parse
// their tileset metadata file and pass it into Decode.
package metadata

import (
	"fmt"

	"github.com/maplibre/mlt-go/errs"
)

// ScalarType is a column's scalar physical/logical type.
type ScalarType uint8

const (
	Bool ScalarType = iota
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
	String
)

func (t ScalarType) String() string {
	switch t {
	case Bool:
		return "Bool"
	case Int32:
		return "Int32"
	case UInt32:
		return "UInt32"
	case Int64:
		return "Int64"
	case UInt64:
		return "UInt64"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case String:
		return "String"
	default:
		return fmt.Sprintf("ScalarType(%d)", uint8(t))
	}
}

// ComplexType is a column's complex (non-scalar) type.
type ComplexType uint8

const (
	Geometry ComplexType = iota
	Struct
)

func (t ComplexType) String() string {
	switch t {
	case Geometry:
		return "Geometry"
	case Struct:
		return "Struct"
	default:
		return fmt.Sprintf("ComplexType(%d)", uint8(t))
	}
}

// Scope declares how a column's values are shared: per-feature, or scoped
// to the whole feature table (a tile-wide constant).
type Scope uint8

const (
	FeatureScope Scope = iota
	TileScope
)

// Column declares one feature-table column. Exactly one of ScalarType or
// ComplexType is meaningful, selected by IsComplex.
type Column struct {
	Name       string
	Nullable   bool
	Scope      Scope
	IsComplex  bool
	ScalarType ScalarType
	Complex    ComplexType
}

// FeatureTable declares the column schema shared by every feature in the
// layers that reference it by FeatureTableId.
type FeatureTable struct {
	Name    string
	Columns []Column
}

// TileSetMetadata is the parallel, length-prefixed record (§6.2) a tile's
// layers are decoded against. Its own wire format is not implemented here;
// only this in-memory shape is consumed, per spec obligations (a) iterate
// columns in declared order and (b) interpret "id"/"geometry" specially.
type TileSetMetadata struct {
	FeatureTables []FeatureTable
}

// FeatureTableByID returns the feature table at index id, or an error if id
// is out of range.
func (m TileSetMetadata) FeatureTableByID(id int) (FeatureTable, error) {
	if id < 0 || id >= len(m.FeatureTables) {
		return FeatureTable{}, fmt.Errorf("%w: feature table id %d out of range (%d declared)", errs.ErrMetadataMismatch, id, len(m.FeatureTables))
	}

	return m.FeatureTables[id], nil
}
