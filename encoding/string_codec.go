package encoding

import (
	"fmt"

	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/internal/collision"
	"github.com/maplibre/mlt-go/stream"
)

// DecodeStringColumn decodes the raw streams of one string column (§4.6) into
// a flat list of present-feature strings, dispatching on the DATA stream's
// dictionary tag to pick between the plain, single-dictionary and
// FSST-compressed-dictionary layouts.
//
// streams holds every stream belonging to this column in wire order, already
// split out by the caller (stream.ReadStreams); it does not include the
// column's PRESENT stream.
func DecodeStringColumn(streams []stream.RawStream) ([]string, error) {
	dataStream, ok := findStream(streams, stream.Data)
	if !ok {
		return nil, fmt.Errorf("%w: string column has no DATA stream", errs.ErrUnsupportedEncoding)
	}

	switch dataStream.Meta.DictionaryType() {
	case stream.DictNone:
		return decodePlainStrings(streams)
	case stream.DictSingle, stream.DictShared:
		// A shared dictionary is built from a value space pooled across
		// several columns at encode time (see EncodeStringColumnShared), but
		// each column still carries its own complete dictionary subset on
		// the wire: decoding one column never needs another column's
		// streams.
		return decodeSingleDictStrings(streams)
	case stream.DictFSST:
		return decodeFSSTDictStrings(streams)
	default:
		return nil, fmt.Errorf("%w: string column dictionary type %s", errs.ErrUnsupportedEncoding, dataStream.Meta.DictionaryType())
	}
}

func findStream(streams []stream.RawStream, t stream.PhysicalStreamType) (stream.RawStream, bool) {
	for _, s := range streams {
		if s.Meta.PhysicalStreamType == t {
			return s, true
		}
	}

	return stream.RawStream{}, false
}

// decodePlainStrings implements the Plain layout: OFFSET/STRING and
// LENGTH/VAR_BINARY give an explicit (offset, length) pair per feature into
// the DATA/NONE byte blob.
func decodePlainStrings(streams []stream.RawStream) ([]string, error) {
	dataS, ok := findStream(streams, stream.Data)
	if !ok {
		return nil, fmt.Errorf("%w: plain string column missing DATA stream", errs.ErrUnsupportedEncoding)
	}
	offsetS, ok := findStream(streams, stream.Offset)
	if !ok {
		return nil, fmt.Errorf("%w: plain string column missing OFFSET stream", errs.ErrUnsupportedEncoding)
	}
	lengthS, ok := findStream(streams, stream.Length)
	if !ok {
		return nil, fmt.Errorf("%w: plain string column missing LENGTH stream", errs.ErrUnsupportedEncoding)
	}

	offsets, err := DecodeIntStream(offsetS.Meta, offsetS.Payload, false)
	if err != nil {
		return nil, err
	}
	lengths, err := DecodeIntStream(lengthS.Meta, lengthS.Payload, false)
	if err != nil {
		return nil, err
	}
	if len(offsets) != len(lengths) {
		return nil, fmt.Errorf("%w: string column offset/length count mismatch: %d vs %d", errs.ErrCountMismatch, len(offsets), len(lengths))
	}

	return sliceStrings(dataS.Payload, offsets, lengths)
}

// decodeSingleDictStrings implements the Single dictionary layout:
// DATA/SINGLE holds the concatenated dictionary bytes, LENGTH/DICTIONARY
// gives each entry's byte length (cumulative offsets are derived from it),
// and OFFSET/STRING gives each feature's dictionary index.
func decodeSingleDictStrings(streams []stream.RawStream) ([]string, error) {
	dataS, ok := findStream(streams, stream.Data)
	if !ok {
		return nil, fmt.Errorf("%w: dictionary string column missing DATA stream", errs.ErrUnsupportedEncoding)
	}

	dict, err := buildDictionary(dataS.Payload, streams)
	if err != nil {
		return nil, err
	}

	return resolveDictionaryOffsets(dict, streams)
}

// decodeFSSTDictStrings implements the FSST-compressed dictionary layout:
// the DATA/FSST stream's payload is FSST-compressed against the symbol table
// carried in the LENGTH/SYMBOL stream; decompressing it yields the same
// concatenated dictionary bytes decodeSingleDictStrings works from.
func decodeFSSTDictStrings(streams []stream.RawStream) ([]string, error) {
	fsstS, ok := findStream(streams, stream.Data)
	if !ok {
		return nil, fmt.Errorf("%w: FSST string column missing DATA/FSST stream", errs.ErrUnsupportedEncoding)
	}

	var symbolS stream.RawStream
	found := false
	for _, s := range streams {
		if s.Meta.PhysicalStreamType == stream.Length && s.Meta.LengthType() == stream.LengthSymbol {
			symbolS = s
			found = true

			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: FSST string column missing LENGTH/SYMBOL stream", errs.ErrUnsupportedEncoding)
	}

	table, _, err := DecodeFSSTSymbolTable(symbolS.Payload, 0, int(symbolS.Meta.NumValues))
	if err != nil {
		return nil, err
	}

	dictBytes, err := table.Decompress(fsstS.Payload)
	if err != nil {
		return nil, err
	}

	dict, err := buildDictionary(dictBytes, streams)
	if err != nil {
		return nil, err
	}

	return resolveDictionaryOffsets(dict, streams)
}

// buildDictionary slices the concatenated dictionary bytes into entries using
// the LENGTH/DICTIONARY stream's per-entry lengths.
func buildDictionary(dictBytes []byte, streams []stream.RawStream) ([]string, error) {
	var lengthS stream.RawStream
	found := false
	for _, s := range streams {
		if s.Meta.PhysicalStreamType == stream.Length && s.Meta.LengthType() == stream.LengthDictionary {
			lengthS = s
			found = true

			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: dictionary string column missing LENGTH/DICTIONARY stream", errs.ErrUnsupportedEncoding)
	}

	lengths, err := DecodeIntStream(lengthS.Meta, lengthS.Payload, false)
	if err != nil {
		return nil, err
	}

	dict := make([]string, len(lengths))
	pos := 0
	for i, l := range lengths {
		end := pos + int(l)
		if end > len(dictBytes) {
			return nil, errs.ErrEndOfBuffer
		}
		dict[i] = string(dictBytes[pos:end])
		pos = end
	}

	return dict, nil
}

// resolveDictionaryOffsets reads the OFFSET/STRING stream and looks each
// feature's dictionary index up in dict.
func resolveDictionaryOffsets(dict []string, streams []stream.RawStream) ([]string, error) {
	offsetS, ok := findStream(streams, stream.Offset)
	if !ok {
		return nil, fmt.Errorf("%w: dictionary string column missing OFFSET stream", errs.ErrUnsupportedEncoding)
	}

	offsets, err := DecodeIntStream(offsetS.Meta, offsetS.Payload, false)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(offsets))
	for i, idx := range offsets {
		if idx < 0 || int(idx) >= len(dict) {
			return nil, fmt.Errorf("%w: string dictionary index %d out of range (%d entries)", errs.ErrInvalidEnum, idx, len(dict))
		}
		out[i] = dict[idx]
	}

	return out, nil
}

func sliceStrings(data []byte, offsets, lengths []int64) ([]string, error) {
	out := make([]string, len(offsets))
	for i := range offsets {
		start, l := offsets[i], lengths[i]
		if start < 0 || l < 0 || int(start+l) > len(data) {
			return nil, errs.ErrEndOfBuffer
		}
		out[i] = string(data[start : start+l])
	}

	return out, nil
}

// EncodeStringColumnPlain encodes values using the Plain layout: values are
// concatenated as-is into the DATA stream and given explicit per-feature
// (offset, length) pairs. This is the layout column.EncodeStringColumnProperty
// always uses; no size comparison against a dictionary layout is made.
func EncodeStringColumnPlain(values []string) (offsetMeta, lengthMeta stream.Metadata, offsetPayload, lengthPayload, data []byte, err error) {
	offsets := make([]int64, len(values))
	lengths := make([]int64, len(values))
	var buf []byte
	pos := int64(0)
	for i, v := range values {
		offsets[i] = pos
		lengths[i] = int64(len(v))
		buf = append(buf, v...)
		pos += int64(len(v))
	}

	offsetMeta, offsetPayload, err = EncodeIntStream(offsets, false, EncodeOptions{})
	if err != nil {
		return stream.Metadata{}, stream.Metadata{}, nil, nil, nil, err
	}
	lengthMeta, lengthPayload, err = EncodeIntStream(lengths, false, EncodeOptions{})
	if err != nil {
		return stream.Metadata{}, stream.Metadata{}, nil, nil, nil, err
	}

	return offsetMeta, lengthMeta, offsetPayload, lengthPayload, buf, nil
}

// BuildStringDictionary deduplicates values into a dictionary plus a
// per-feature index list, the shape the Single dictionary and
// FSST-compressed dictionary layouts are both built from. Deduplication goes
// through a collision.Tracker, the same hash-bucket-then-exact-match
// interning engine EncodeStringColumnShared uses.
func BuildStringDictionary(values []string) (dict []string, indices []int64) {
	t := collision.NewTracker()
	indices = make([]int64, len(values))

	for i, v := range values {
		indices[i] = int64(t.Intern(v))
	}

	return t.Values(), indices
}

// EncodeStringColumnDictionary encodes values using the Single dictionary
// layout.
func EncodeStringColumnDictionary(values []string) (offsetMeta, lengthMeta stream.Metadata, offsetPayload, lengthPayload, data []byte, err error) {
	dict, indices := BuildStringDictionary(values)

	return encodeDictionaryStreams(dict, indices)
}

// EncodeStringColumnShared encodes values using the Shared dictionary
// layout: interning goes through shared instead of a Tracker private to this
// column, so identical strings across several columns (or across several
// calls against the same shared Tracker, e.g. one column encoded tile after
// tile) land on the same dictionary index. The emitted dictionary always
// covers shared's full accumulated value space, so the column stays fully
// self-contained and decodable on its own via the DictSingle code path;
// "sharing" is the pooled, stable index numbering across calls, not a
// cross-column byte reference at decode time.
func EncodeStringColumnShared(values []string, shared *collision.Tracker) (offsetMeta, lengthMeta stream.Metadata, offsetPayload, lengthPayload, data []byte, err error) {
	indices := make([]int64, len(values))
	for i, v := range values {
		indices[i] = int64(shared.Intern(v))
	}

	return encodeDictionaryStreams(shared.Values(), indices)
}

func encodeDictionaryStreams(dict []string, indices []int64) (offsetMeta, lengthMeta stream.Metadata, offsetPayload, lengthPayload, data []byte, err error) {
	lengths := make([]int64, len(dict))
	var buf []byte
	for i, s := range dict {
		lengths[i] = int64(len(s))
		buf = append(buf, s...)
	}

	offsetMeta, offsetPayload, err = EncodeIntStream(indices, false, EncodeOptions{})
	if err != nil {
		return stream.Metadata{}, stream.Metadata{}, nil, nil, nil, err
	}
	lengthMeta, lengthPayload, err = EncodeIntStream(lengths, false, EncodeOptions{})
	if err != nil {
		return stream.Metadata{}, stream.Metadata{}, nil, nil, nil, err
	}

	return offsetMeta, lengthMeta, offsetPayload, lengthPayload, buf, nil
}

// EncodeStringColumnFSST encodes values using the FSST-compressed dictionary
// layout: a symbol table is trained on the deduplicated dictionary, the
// dictionary bytes are FSST-compressed against it, and the dictionary
// length and offset streams are built the same way
// EncodeStringColumnDictionary builds them. All four returned metadata carry
// their stream roles, so they can be passed to DecodeStringColumn as-is.
func EncodeStringColumnFSST(values []string) (symbolMeta, dataMeta, lengthMeta, offsetMeta stream.Metadata, symbolPayload, dataPayload, lengthPayload, offsetPayload []byte, err error) {
	dict, indices := BuildStringDictionary(values)

	table := TrainFSSTSymbolTable(dict)

	lengths := make([]int64, len(dict))
	var plainDict []byte
	for i, s := range dict {
		lengths[i] = int64(len(s))
		plainDict = append(plainDict, s...)
	}
	compressed := table.Compress(plainDict)

	symbolPayload = EncodeFSSTSymbolTable(nil, table)
	symbolMeta = stream.Metadata{
		PhysicalStreamType: stream.Length,
		LogicalStreamType:  uint8(stream.LengthSymbol),
		NumValues:          uint32(len(table.symbols)), //nolint:gosec
		ByteLength:         uint32(len(symbolPayload)),  //nolint:gosec
	}

	dataMeta = stream.Metadata{
		PhysicalStreamType: stream.Data,
		LogicalStreamType:  uint8(stream.DictFSST),
		NumValues:          uint32(len(compressed)), //nolint:gosec
		ByteLength:         uint32(len(compressed)), //nolint:gosec
	}

	lengthMeta, lengthPayload, err = EncodeIntStream(lengths, false, EncodeOptions{})
	if err != nil {
		return stream.Metadata{}, stream.Metadata{}, stream.Metadata{}, stream.Metadata{}, nil, nil, nil, nil, err
	}
	offsetMeta, offsetPayload, err = EncodeIntStream(indices, false, EncodeOptions{})
	if err != nil {
		return stream.Metadata{}, stream.Metadata{}, stream.Metadata{}, stream.Metadata{}, nil, nil, nil, nil, err
	}
	lengthMeta.PhysicalStreamType = stream.Length
	lengthMeta.LogicalStreamType = uint8(stream.LengthDictionary)
	offsetMeta.PhysicalStreamType = stream.Offset
	offsetMeta.LogicalStreamType = uint8(stream.OffsetString)

	return symbolMeta, dataMeta, lengthMeta, offsetMeta, symbolPayload, compressed, lengthPayload, offsetPayload, nil
}
