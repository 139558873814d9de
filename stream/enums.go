// Package stream implements the per-stream metadata header codec (§4.3): the
// two-byte packed header plus the varint trailer that together describe how
// one on-wire stream is physically and logically encoded.
package stream

import "fmt"

// PhysicalStreamType identifies the role a stream plays within a column.
type PhysicalStreamType uint8

const (
	Present PhysicalStreamType = 0
	Data    PhysicalStreamType = 1
	Offset  PhysicalStreamType = 2
	Length  PhysicalStreamType = 3
)

func (t PhysicalStreamType) String() string {
	switch t {
	case Present:
		return "Present"
	case Data:
		return "Data"
	case Offset:
		return "Offset"
	case Length:
		return "Length"
	default:
		return fmt.Sprintf("PhysicalStreamType(%d)", uint8(t))
	}
}

// PhysicalLevelTechnique identifies the byte-level packing of a stream.
type PhysicalLevelTechnique uint8

const (
	PhysicalNone     PhysicalLevelTechnique = 0
	PhysicalFastPFOR PhysicalLevelTechnique = 1
	PhysicalVarint   PhysicalLevelTechnique = 2
	PhysicalALP      PhysicalLevelTechnique = 3 // unimplemented, see errs.ErrUnsupportedEncoding
)

func (t PhysicalLevelTechnique) String() string {
	switch t {
	case PhysicalNone:
		return "None"
	case PhysicalFastPFOR:
		return "FastPFOR"
	case PhysicalVarint:
		return "Varint"
	case PhysicalALP:
		return "ALP"
	default:
		return fmt.Sprintf("PhysicalLevelTechnique(%d)", uint8(t))
	}
}

// LogicalLevelTechnique identifies a reversible numerical transform applied
// before the physical encoding step.
type LogicalLevelTechnique uint8

const (
	LogicalNone               LogicalLevelTechnique = 0
	LogicalDelta              LogicalLevelTechnique = 1
	LogicalComponentwiseDelta LogicalLevelTechnique = 2
	LogicalRLE                LogicalLevelTechnique = 3
	LogicalMorton             LogicalLevelTechnique = 4
	LogicalPseudodecimal      LogicalLevelTechnique = 5 // unimplemented
)

func (t LogicalLevelTechnique) String() string {
	switch t {
	case LogicalNone:
		return "None"
	case LogicalDelta:
		return "Delta"
	case LogicalComponentwiseDelta:
		return "ComponentwiseDelta"
	case LogicalRLE:
		return "RLE"
	case LogicalMorton:
		return "Morton"
	case LogicalPseudodecimal:
		return "Pseudodecimal"
	default:
		return fmt.Sprintf("LogicalLevelTechnique(%d)", uint8(t))
	}
}

// DictionaryType identifies how a string or vertex DATA stream's dictionary
// is organized.
type DictionaryType uint8

const (
	DictNone   DictionaryType = 0
	DictSingle DictionaryType = 1
	DictShared DictionaryType = 2
	DictVertex DictionaryType = 3
	DictMorton DictionaryType = 4
	DictFSST   DictionaryType = 5
)

func (t DictionaryType) String() string {
	switch t {
	case DictNone:
		return "None"
	case DictSingle:
		return "Single"
	case DictShared:
		return "Shared"
	case DictVertex:
		return "Vertex"
	case DictMorton:
		return "Morton"
	case DictFSST:
		return "FSST"
	default:
		return fmt.Sprintf("DictionaryType(%d)", uint8(t))
	}
}

// LengthType identifies what a LENGTH stream's counts apply to.
type LengthType uint8

const (
	LengthVarBinary  LengthType = 0
	LengthGeometries LengthType = 1
	LengthParts      LengthType = 2
	LengthRings      LengthType = 3
	LengthTriangles  LengthType = 4
	LengthSymbol     LengthType = 5
	LengthDictionary LengthType = 6
)

func (t LengthType) String() string {
	switch t {
	case LengthVarBinary:
		return "VarBinary"
	case LengthGeometries:
		return "Geometries"
	case LengthParts:
		return "Parts"
	case LengthRings:
		return "Rings"
	case LengthTriangles:
		return "Triangles"
	case LengthSymbol:
		return "Symbol"
	case LengthDictionary:
		return "Dictionary"
	default:
		return fmt.Sprintf("LengthType(%d)", uint8(t))
	}
}

// OffsetType identifies what an OFFSET stream's indices point into.
type OffsetType uint8

const (
	OffsetVertex OffsetType = 0
	OffsetIndex  OffsetType = 1
	OffsetString OffsetType = 2
	OffsetKey    OffsetType = 3
)

func (t OffsetType) String() string {
	switch t {
	case OffsetVertex:
		return "Vertex"
	case OffsetIndex:
		return "Index"
	case OffsetString:
		return "String"
	case OffsetKey:
		return "Key"
	default:
		return fmt.Sprintf("OffsetType(%d)", uint8(t))
	}
}
