package encoding

import (
	"testing"

	"github.com/maplibre/mlt-go/errs"
	"github.com/stretchr/testify/require"
)

// TestFSSTDecodesDictionaryScenario reproduces the dictionary/symbol-table/
// payload triple used to validate FSST decoding: a 9-symbol table decoding a
// 29-index payload to a 44-byte literal string.
func TestFSSTDecodesDictionaryScenario(t *testing.T) {
	lengths := []uint8{2, 2, 2, 1, 1, 1, 1, 1, 1}
	symbolBytes := []byte{65, 65, 69, 69, 100, 100, 65, 66, 67, 69, 100, 102}

	var wire []byte
	for _, l := range lengths {
		wire = append(wire, l)
	}
	wire = append(wire, symbolBytes...)

	table, n, err := DecodeFSSTSymbolTable(wire, 0, len(lengths))
	require.NoError(t, err)
	require.Equal(t, len(wire), n)

	payload := []byte{0, 0, 0, 3, 4, 4, 4, 0, 3, 5, 5, 2, 2, 7, 1, 1, 1, 8, 8, 8, 1, 1, 0, 0, 3, 2, 2, 5, 5}
	got, err := table.Decompress(payload)
	require.NoError(t, err)
	require.Equal(t, "AAAAAAABBBAAACCdddddEEEEEEfffEEEEAAAAAddddCC", string(got))
}

func TestFSSTSymbolTableRoundTrip(t *testing.T) {
	table := FSSTSymbolTable{
		lengths: []uint8{2, 3},
		symbols: [][]byte{[]byte("ab"), []byte("xyz")},
	}

	buf := EncodeFSSTSymbolTable(nil, table)
	got, n, err := DecodeFSSTSymbolTable(buf, 0, 2)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, table, got)
}

func TestFSSTDecompressEscapeByte(t *testing.T) {
	table := FSSTSymbolTable{lengths: []uint8{1}, symbols: [][]byte{[]byte("a")}}
	// escape(255) + literal byte 'z', then symbol 0.
	compressed := []byte{255, 'z', 0}
	got, err := table.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, "za", string(got))
}

func TestFSSTDecompressTruncatedEscape(t *testing.T) {
	table := FSSTSymbolTable{lengths: []uint8{1}, symbols: [][]byte{[]byte("a")}}
	_, err := table.Decompress([]byte{255})
	require.ErrorIs(t, err, errs.ErrEndOfBuffer)
}

func TestFSSTDecompressIndexOutOfRange(t *testing.T) {
	table := FSSTSymbolTable{lengths: []uint8{1}, symbols: [][]byte{[]byte("a")}}
	_, err := table.Decompress([]byte{5})
	require.ErrorIs(t, err, errs.ErrInvalidEnum)
}

func TestFSSTCompressDecompressRoundTrip(t *testing.T) {
	table := TrainFSSTSymbolTable([]string{"banana banana banana", "ananas"})
	data := []byte("banana ananas banana")

	compressed := table.Compress(data)
	got, err := table.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestTrainFSSTSymbolTableCapsAtMax(t *testing.T) {
	samples := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		samples = append(samples, string(rune('a'+i%26))+string(rune('A'+i%26)))
	}
	table := TrainFSSTSymbolTable(samples)
	require.LessOrEqual(t, len(table.symbols), maxFSSTSymbols)
}
