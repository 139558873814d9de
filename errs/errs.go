// Package errs defines the sentinel error values returned by the mlt-go codec.
//
// Call sites wrap a sentinel with additional context using fmt.Errorf("%w: ...", ...)
// so callers can still test the error kind with errors.Is while getting a
// human-readable message. The taxonomy follows the error kinds named in the
// MLT core codec specification (§7): a read past the end of a buffer, a
// malformed varint, an out-of-range wire enum, a declared-but-unimplemented
// encoding, a broken geometry invariant, a column/type mismatch, a feature
// count mismatch, and leftover bytes after decoding a layer.
package errs

import "errors"

var (
	// ErrEndOfBuffer is returned when a read would cross the end of the input.
	ErrEndOfBuffer = errors.New("mlt: end of buffer")

	// ErrVarintOverflow is returned when a varint exceeds the width of its target type.
	ErrVarintOverflow = errors.New("mlt: varint overflow")

	// ErrInvalidEnum is returned when a wire enum code is out of range for its field.
	ErrInvalidEnum = errors.New("mlt: invalid enum value")

	// ErrUnsupportedEncoding is returned for declared-but-unimplemented encodings
	// (ALP, PSEUDODECIMAL, FSST without a symbol table, rejected FastPFOR cases).
	ErrUnsupportedEncoding = errors.New("mlt: unsupported encoding")

	// ErrGeometryError is returned for topology underflow/overflow, rings shorter
	// than 2 vertices, or polygons with no shell.
	ErrGeometryError = errors.New("mlt: geometry error")

	// ErrMetadataMismatch is returned when a column name maps to the wrong type variant.
	ErrMetadataMismatch = errors.New("mlt: metadata mismatch")

	// ErrCountMismatch is returned when numFeatures disagrees with the decoded
	// ids/geometries counts.
	ErrCountMismatch = errors.New("mlt: count mismatch")

	// ErrTrailingBytes is returned when a layer's declared byte length does not
	// match the number of bytes actually consumed.
	ErrTrailingBytes = errors.New("mlt: trailing bytes")

	// ErrInvalidConfig is returned when an EncodeConfig option fails validation.
	ErrInvalidConfig = errors.New("mlt: invalid config")

	// ErrEncoderFinished signals use of an encoder after it has finished; no
	// encoder in this module returns it, as all encoders are single-call
	// functions.
	ErrEncoderFinished = errors.New("mlt: encoder already finished")
)
