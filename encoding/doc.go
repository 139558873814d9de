// Package encoding implements the two per-column stream codecs the rest of
// the tile format is built from: the integer stream codec (§4.4), combining
// a physical packing (varint or FastPFOR) with a logical transform (delta,
// RLE, componentwise delta, Morton, or delta+RLE); and the string stream
// codec (§4.6), covering plain, single-dictionary, shared-dictionary, and
// FSST-compressed-dictionary layouts.
//
// Both codecs are adapted from the reference module's columnar timestamp and
// value encoders (internal/encoding/ts_delta.go, encoding/numeric_raw.go):
// the same "zigzag the delta, varint the result" idiom, generalized from a
// fixed timestamp/float64 pipeline into the four-candidate, metadata-driven
// pipeline the tile format requires. Where the reference encoder streams
// values one at a time into a growable buffer, these codecs operate on whole
// in-memory slices, because the tile format's smallest addressable unit is a
// fully materialized stream rather than an open-ended append log.
package encoding
