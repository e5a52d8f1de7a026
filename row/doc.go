// Package row implements the binary record codec: logical rows encoded into
// a compact fixed-header + variable-length layout living inside memory
// segments.
//
// # Layout
//
// A binary row over n fields is, in order:
//
//   - a null bitmap of ceil(n/8) bytes (bit i set means field i is null)
//   - n fixed-width slots of 8 bytes each, holding either the inline value
//     or a descriptor (uint32 offset | uint32 length, little-endian) into
//     the variable region
//   - the variable region holding out-of-line values
//
// The total encoded length is always padded to a multiple of 8 bytes. A
// field marked null has no defined value in the fixed or variable region.
// Rows are immutable once produced by the encoder.
//
// # Timestamps
//
// Timestamp values carry millisecond and nanosecond-of-millisecond
// components. When the declared precision fits in milliseconds the value is
// stored compactly inline (8 bytes); otherwise it is stored out-of-line as
// 12 bytes (millis + nanos). The compactness switch is derived from the
// precision alone and is fixed for the lifetime of a stream.
package row
