package encoding

import (
	"fmt"
	"sort"

	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/internal/bitutil"
)

// escapeByte marks a literal byte in an FSST-compressed stream rather than a
// symbol table index (§4.6).
const escapeByte = 255

// maxFSSTSymbols is the largest symbol table FSST supports.
const maxFSSTSymbols = 255

// FSSTSymbolTable is a decoded FSST symbol table: up to 255 symbols, each
// 1..8 raw bytes.
type FSSTSymbolTable struct {
	lengths []uint8
	symbols [][]byte
}

// DecodeFSSTSymbolTable reads a symbol table from data starting at offset:
// numSymbols length varints followed by their concatenated raw bytes, the
// wire shape named in §4.6. Returns the table and bytes consumed.
func DecodeFSSTSymbolTable(data []byte, offset int, numSymbols int) (FSSTSymbolTable, int, error) {
	if numSymbols > maxFSSTSymbols {
		return FSSTSymbolTable{}, 0, fmt.Errorf("%w: FSST symbol table has %d symbols, max %d", errs.ErrUnsupportedEncoding, numSymbols, maxFSSTSymbols)
	}

	start := offset
	lengths := make([]uint8, numSymbols)
	total := 0
	for i := range lengths {
		l, n, err := bitutil.GetVarint32(data, offset)
		if err != nil {
			return FSSTSymbolTable{}, 0, err
		}
		offset += n
		if l < 1 || l > 8 {
			return FSSTSymbolTable{}, 0, fmt.Errorf("%w: FSST symbol length %d out of range [1,8]", errs.ErrInvalidEnum, l)
		}
		lengths[i] = uint8(l)
		total += int(l)
	}

	if offset+total > len(data) {
		return FSSTSymbolTable{}, 0, errs.ErrEndOfBuffer
	}

	symbols := make([][]byte, numSymbols)
	pos := offset
	for i, l := range lengths {
		symbols[i] = data[pos : pos+int(l)]
		pos += int(l)
	}

	return FSSTSymbolTable{lengths: lengths, symbols: symbols}, pos - start, nil
}

// EncodeFSSTSymbolTable serializes a symbol table (lengths as varints, then
// the concatenated raw symbol bytes) to buf.
func EncodeFSSTSymbolTable(buf []byte, table FSSTSymbolTable) []byte {
	for _, l := range table.lengths {
		buf = bitutil.AppendVarint32(buf, uint32(l))
	}
	for _, s := range table.symbols {
		buf = append(buf, s...)
	}

	return buf
}

// Decompress reconstructs the original bytes from an FSST-compressed stream:
// each input byte is either the escape marker (255, followed by one literal
// byte) or an index into the symbol table whose bytes are emitted in full.
func (t FSSTSymbolTable) Decompress(compressed []byte) ([]byte, error) {
	out := make([]byte, 0, len(compressed)*2)

	for i := 0; i < len(compressed); i++ {
		b := compressed[i]
		if b == escapeByte {
			i++
			if i >= len(compressed) {
				return nil, errs.ErrEndOfBuffer
			}
			out = append(out, compressed[i])

			continue
		}

		if int(b) >= len(t.symbols) {
			return nil, fmt.Errorf("%w: FSST symbol index %d out of range (table has %d symbols)", errs.ErrInvalidEnum, b, len(t.symbols))
		}
		out = append(out, t.symbols[b]...)
	}

	return out, nil
}

// TrainFSSTSymbolTable builds a symbol table from sample data using a greedy
// frequency heuristic: count every substring of length 2..8, score each by
// (byte savings) = frequency * (length - 1), and keep the top-scoring
// candidates up to maxFSSTSymbols (candidates may overlap one another). This is a simplified
// trainer; it does not implement the reference implementation's iterative
// counter-table refinement, only its scoring idea.
func TrainFSSTSymbolTable(samples []string) FSSTSymbolTable {
	type candidate struct {
		sym   string
		score int
	}

	counts := make(map[string]int)
	for _, s := range samples {
		b := []byte(s)
		for length := 2; length <= 8; length++ {
			for i := 0; i+length <= len(b); i++ {
				counts[string(b[i:i+length])]++
			}
		}
	}

	candidates := make([]candidate, 0, len(counts))
	for sym, freq := range counts {
		if freq < 2 {
			continue
		}
		candidates = append(candidates, candidate{sym: sym, score: freq * (len(sym) - 1)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}

		return candidates[i].sym < candidates[j].sym
	})

	var table FSSTSymbolTable
	for _, c := range candidates {
		if len(table.symbols) >= maxFSSTSymbols {
			break
		}
		table.lengths = append(table.lengths, uint8(len(c.sym)))
		table.symbols = append(table.symbols, []byte(c.sym))
	}

	return table
}

// Compress greedily encodes data using the symbol table, preferring the
// longest matching symbol at each position and falling back to the escape
// byte for bytes with no match. This is the straightforward (non-optimal)
// greedy FSST compressor; the symbol table itself is assumed pre-trained.
func (t FSSTSymbolTable) Compress(data []byte) []byte {
	out := make([]byte, 0, len(data))

	for i := 0; i < len(data); {
		bestIdx := -1
		bestLen := 0
		for idx, sym := range t.symbols {
			l := len(sym)
			if l <= bestLen || i+l > len(data) {
				continue
			}
			if string(data[i:i+l]) == string(sym) {
				bestIdx = idx
				bestLen = l
			}
		}

		if bestIdx >= 0 {
			out = append(out, byte(bestIdx))
			i += bestLen
		} else {
			out = append(out, escapeByte, data[i])
			i++
		}
	}

	return out
}
