// Package mlt implements the top-level MapLibre Tile codec entry points
// (§6.3): decode(tile_bytes, tileset_metadata) -> Tile and
// encode(layers[], config) -> bytes, each a thin driver over tile, column,
// geometry and encoding.
package mlt

import (
	"fmt"

	"github.com/maplibre/mlt-go/encoding"
	"github.com/maplibre/mlt-go/errs"
	"github.com/maplibre/mlt-go/geometry"
	"github.com/maplibre/mlt-go/internal/bitutil"
	"github.com/maplibre/mlt-go/internal/options"
	"github.com/maplibre/mlt-go/internal/pool"
	"github.com/maplibre/mlt-go/metadata"
	"github.com/maplibre/mlt-go/tile"
)

// Tile, Layer and Feature are re-exported so callers don't need to import
// the tile package directly for the common case.
type (
	Tile    = tile.Tile
	Layer   = tile.Layer
	Feature = tile.Feature
)

// endianness records which byte order an EncodeConfig was configured for.
// Only little-endian output is implemented; WithBigEndian exists for API
// parity with the reference encoder's configuration surface and fails at
// option-application time.
type endianness uint8

const (
	littleEndian endianness = iota
	bigEndian
)

// EncodeConfig controls Encode's behavior (§6.3 "config").
type EncodeConfig struct {
	useFastPFOR bool
	includeIDs  bool
	endian      endianness
}

// EncodeOption configures an EncodeConfig via the generic functional-options
// pattern.
type EncodeOption = options.Option[*EncodeConfig]

// WithFastPFOR enables the FastPFOR physical technique for eligible integer
// streams (§6.3 use_fast_pfor).
func WithFastPFOR(v bool) EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.useFastPFOR = v })
}

// WithIncludeIDs controls whether a layer's feature ids are written
// (§6.3 include_ids); when false, every feature's "id" column row is
// encoded as absent regardless of the ids supplied to Encode.
func WithIncludeIDs(v bool) EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.includeIDs = v })
}

// WithLittleEndian selects little-endian output. It is the default.
func WithLittleEndian() EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.endian = littleEndian })
}

// WithBigEndian selects big-endian output. Unimplemented: every numeric
// stream this codec writes (varint, FastPFOR, raw float bytes) is
// little-endian by construction, so this option always fails.
func WithBigEndian() EncodeOption {
	return options.New(func(c *EncodeConfig) error {
		return fmt.Errorf("%w: big-endian output", errs.ErrUnsupportedEncoding)
	})
}

// LayerInput bundles the values Encode needs for one layer beyond what a
// decoded tile.Layer retains: the feature table schema it was built against,
// that table's declared index in the tileset metadata, and the geometries
// and ids by feature position (a decoded Layer exposes only the assembled
// Feature/PropertyColumn view, not these raw per-column arrays).
type LayerInput struct {
	Layer          tile.Layer
	Table          metadata.FeatureTable
	FeatureTableID int
	Geometries     []geometry.Geometry
	IDs            []uint64
	HasID          []bool
}

// Decode parses tileBytes as a concatenation of length-prefixed layers
// (§6.1), decoding each against tilesetMetadata (§6.2).
func Decode(tileBytes []byte, tilesetMetadata metadata.TileSetMetadata) (Tile, error) {
	b := tile.NewBufferStream(tileBytes)

	var layers []tile.Layer
	for b.Remaining() > 0 {
		length, err := b.ReadVarint32()
		if err != nil {
			return Tile{}, err
		}
		layerBytes, err := b.ReadN(int(length))
		if err != nil {
			return Tile{}, err
		}
		layer, err := tile.DecodeLayer(layerBytes, tilesetMetadata)
		if err != nil {
			return Tile{}, err
		}
		layers = append(layers, layer)
	}

	return Tile{Layers: layers}, nil
}

// Encode serializes layers as a concatenation of length-prefixed layer
// records (§6.1), applying opts to build the EncodeConfig.
func Encode(layers []LayerInput, opts ...EncodeOption) ([]byte, error) {
	cfg := &EncodeConfig{includeIDs: true, endian: littleEndian}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	encOpts := encoding.EncodeOptions{UseFastPFOR: cfg.useFastPFOR}

	out := pool.GetTileSetBuffer()
	defer pool.PutTileSetBuffer(out)

	for _, in := range layers {
		hasID := in.HasID
		if !cfg.includeIDs {
			hasID = make([]bool, len(in.Geometries))
		}

		encoded, err := tile.EncodeLayer(in.Layer, in.Table, in.FeatureTableID, in.IDs, hasID, in.Geometries, encOpts)
		if err != nil {
			return nil, err
		}

		out.B = bitutil.AppendVarint32(out.B, uint32(len(encoded))) //nolint:gosec
		out.MustWrite(encoded)
	}

	result := make([]byte, out.Len())
	copy(result, out.Bytes())

	return result, nil
}
