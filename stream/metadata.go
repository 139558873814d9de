package stream

import (
	"fmt"

	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/internal/bitutil"
)

// Metadata describes one on-wire stream: its role, its logical transform
// pipeline, its physical packing, and the value/byte counts needed to read
// its payload.
//
// LogicalLevelTechnique2 is typically LogicalNone; it is set to LogicalRLE
// for the DELTA+RLE combination (§4.4.1).
//
// RLE and Morton subtypes carry two additional varints, stored here as
// (NumBits, CoordShift) for Morton and (Runs, NumRleValues) for RLE so callers
// don't need to remember which union member is active for which technique.
type Metadata struct {
	PhysicalStreamType     PhysicalStreamType
	LogicalStreamType      uint8 // interpreted as DictionaryType/LengthType/OffsetType depending on PhysicalStreamType
	LogicalLevelTechnique1 LogicalLevelTechnique
	LogicalLevelTechnique2 LogicalLevelTechnique
	PhysicalLevelTechnique PhysicalLevelTechnique
	NumValues              uint32
	ByteLength             uint32

	// Morton-only.
	NumBits    uint32
	CoordShift uint32

	// RLE-only.
	Runs         uint32
	NumRleValues uint32
}

// DictionaryType returns LogicalStreamType as a DictionaryType; only
// meaningful when PhysicalStreamType == Data.
func (m Metadata) DictionaryType() DictionaryType { return DictionaryType(m.LogicalStreamType) }

// OffsetType returns LogicalStreamType as an OffsetType; only meaningful when
// PhysicalStreamType == Offset.
func (m Metadata) OffsetType() OffsetType { return OffsetType(m.LogicalStreamType) }

// LengthType returns LogicalStreamType as a LengthType; only meaningful when
// PhysicalStreamType == Length.
func (m Metadata) LengthType() LengthType { return LengthType(m.LogicalStreamType) }

// hasMortonTrailer reports whether the varint trailer carries (numBits, coordShift).
func (m Metadata) hasMortonTrailer() bool {
	return m.LogicalLevelTechnique1 == LogicalMorton
}

// hasRLETrailer reports whether the varint trailer carries (runs, numRleValues).
func (m Metadata) hasRLETrailer() bool {
	rle := m.LogicalLevelTechnique1 == LogicalRLE || m.LogicalLevelTechnique2 == LogicalRLE

	return rle && m.PhysicalLevelTechnique != PhysicalNone
}

// Decode reads one stream metadata header from data starting at offset and
// returns the parsed Metadata plus the number of bytes consumed.
func Decode(data []byte, offset int) (Metadata, int, error) {
	start := offset
	if offset+2 > len(data) {
		return Metadata{}, 0, errs.ErrEndOfBuffer
	}

	byte0 := data[offset]
	byte1 := data[offset+1]
	offset += 2

	m := Metadata{
		PhysicalStreamType:     PhysicalStreamType(byte0 >> 4),
		LogicalStreamType:      byte0 & 0x0F,
		LogicalLevelTechnique1: LogicalLevelTechnique(byte1 >> 5),
		LogicalLevelTechnique2: LogicalLevelTechnique((byte1 >> 2) & 0x07),
		PhysicalLevelTechnique: PhysicalLevelTechnique(byte1 & 0x03),
	}

	if m.PhysicalStreamType > Length {
		return Metadata{}, 0, fmt.Errorf("%w: physical stream type %d", errs.ErrInvalidEnum, m.PhysicalStreamType)
	}

	numValues, n, err := bitutil.GetVarint32(data, offset)
	if err != nil {
		return Metadata{}, 0, err
	}
	offset += n
	m.NumValues = numValues

	byteLength, n, err := bitutil.GetVarint32(data, offset)
	if err != nil {
		return Metadata{}, 0, err
	}
	offset += n
	m.ByteLength = byteLength

	switch {
	case m.hasMortonTrailer():
		numBits, n, err := bitutil.GetVarint32(data, offset)
		if err != nil {
			return Metadata{}, 0, err
		}
		offset += n

		coordShift, n, err := bitutil.GetVarint32(data, offset)
		if err != nil {
			return Metadata{}, 0, err
		}
		offset += n

		m.NumBits = numBits
		m.CoordShift = coordShift
	case m.hasRLETrailer():
		runs, n, err := bitutil.GetVarint32(data, offset)
		if err != nil {
			return Metadata{}, 0, err
		}
		offset += n

		numRleValues, n, err := bitutil.GetVarint32(data, offset)
		if err != nil {
			return Metadata{}, 0, err
		}
		offset += n

		m.Runs = runs
		m.NumRleValues = numRleValues
	}

	return m, offset - start, nil
}

// ReadStream decodes one metadata header starting at offset, then slices its
// declared ByteLength payload immediately following the header. It returns
// the metadata, the payload (a view into data, not a copy), and the offset of
// the next stream.
func ReadStream(data []byte, offset int) (Metadata, []byte, int, error) {
	m, n, err := Decode(data, offset)
	if err != nil {
		return Metadata{}, nil, 0, err
	}
	offset += n

	if offset+int(m.ByteLength) > len(data) {
		return Metadata{}, nil, 0, errs.ErrEndOfBuffer
	}
	payload := data[offset : offset+int(m.ByteLength)]
	offset += int(m.ByteLength)

	return m, payload, offset, nil
}

// RawStream pairs one decoded metadata header with its payload bytes.
type RawStream struct {
	Meta    Metadata
	Payload []byte
}

// ReadStreams reads count consecutive (metadata, payload) streams starting at
// offset, the shape every multi-stream column (§4.6, §4.7) is built from.
func ReadStreams(data []byte, offset int, count int) ([]RawStream, int, error) {
	out := make([]RawStream, count)
	for i := 0; i < count; i++ {
		m, payload, next, err := ReadStream(data, offset)
		if err != nil {
			return nil, 0, err
		}
		out[i] = RawStream{Meta: m, Payload: payload}
		offset = next
	}

	return out, offset, nil
}

// Encode appends the wire representation of m to buf and returns the
// extended slice.
func Encode(buf []byte, m Metadata) []byte {
	byte0 := byte(m.PhysicalStreamType<<4) | (m.LogicalStreamType & 0x0F)
	byte1 := byte(m.LogicalLevelTechnique1<<5) | byte((m.LogicalLevelTechnique2&0x07)<<2) | byte(m.PhysicalLevelTechnique&0x03)

	buf = append(buf, byte0, byte1)
	buf = bitutil.AppendVarint32(buf, m.NumValues)
	buf = bitutil.AppendVarint32(buf, m.ByteLength)

	switch {
	case m.hasMortonTrailer():
		buf = bitutil.AppendVarint32(buf, m.NumBits)
		buf = bitutil.AppendVarint32(buf, m.CoordShift)
	case m.hasRLETrailer():
		buf = bitutil.AppendVarint32(buf, m.Runs)
		buf = bitutil.AppendVarint32(buf, m.NumRleValues)
	}

	return buf
}
