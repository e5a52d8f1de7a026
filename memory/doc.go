// Package memory provides the fixed-size, bounds-checked memory segment the
// rest of the storage substrate operates on.
//
// A Segment owns exactly one backing buffer: a heap-managed byte slice, an
// off-heap anonymous mapping, or externally owned memory wrapped without
// ownership transfer. Every access is validated against the segment size and
// fails with ErrOutOfBounds on violation; there is no implicit growth or
// wraparound. Off-heap segments must be released with Free, and any access
// after Free fails with ErrSegmentFreed.
//
// Segments expose zero-copy sub-views (AsView) with independent position and
// limit cursors, modeled after byte-buffer windows.
package memory
